package session

import (
	"context"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/identity"
)

const resolveTimeout = 3 * time.Second

// Resolver answers "who is calling?" for the gate pipeline. It consults the
// process-local cache before the identity provider and never denies a request
// itself - a nil session is a valid answer.
type Resolver struct {
	cache    *Cache
	provider identity.Provider
}

func NewResolver(cache *Cache, provider identity.Provider) *Resolver {
	return &Resolver{
		cache:    cache,
		provider: provider,
	}
}

// Resolve returns the session for token, or nil when none is resolvable.
// Successful provider lookups are cached; failed lookups never are.
func (r *Resolver) Resolve(ctx context.Context, token string) (*identity.Session, error) {
	if token == "" {
		return nil, nil
	}

	if session, ok := r.cache.Get(token); ok {
		return session, nil
	}

	ctx, cancel := context.WithTimeout(ctx, resolveTimeout)
	defer cancel()

	session, err := r.provider.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	if session != nil {
		r.cache.Put(token, session)
	}

	return session, nil
}
