package routes

import "strings"

// Class is the authorization requirement attached to a path.
type Class int

const (
	// ClassPublic paths are served with no session or role checks.
	ClassPublic Class = iota
	// ClassProtected paths require a resolved session.
	ClassProtected
	// ClassPrivileged paths additionally require the staff flag.
	ClassPrivileged
)

func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassProtected:
		return "protected"
	case ClassPrivileged:
		return "privileged"
	default:
		return "unknown"
	}
}

// Table classifies paths by prefix match against three lists. Public is
// checked first, so an overlap between lists resolves in favor of Public;
// anything unmatched falls back to Protected.
type Table struct {
	public     []string
	protected  []string
	privileged []string
}

func NewTable(public, protected, privileged []string) *Table {
	return &Table{
		public:     public,
		protected:  protected,
		privileged: privileged,
	}
}

func (t *Table) Classify(path string) Class {
	if matchAny(t.public, path) {
		return ClassPublic
	}
	if matchAny(t.privileged, path) {
		return ClassPrivileged
	}
	// Explicit Protected entries and the unmatched fallback behave the same
	return ClassProtected
}

func matchAny(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		// The root entry would otherwise shadow every path
		if prefix == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
