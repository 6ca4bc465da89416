package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testTable() *Table {
	return NewTable(
		[]string{"/", "/auth/welcome", "/auth/signup", "/api/auth/login", "/api/health"},
		[]string{"/Order", "/profile", "/api/orders"},
		[]string{"/admin", "/api/admin"},
	)
}

func TestTable_Classify(t *testing.T) {
	table := testTable()

	tests := []struct {
		path string
		want Class
	}{
		{"/", ClassPublic},
		{"/auth/welcome", ClassPublic},
		{"/auth/signup", ClassPublic},
		{"/api/auth/login", ClassPublic},
		{"/api/health", ClassPublic},
		{"/Order", ClassProtected},
		{"/Order/checkout", ClassProtected},
		{"/profile", ClassProtected},
		{"/api/orders/42", ClassProtected},
		{"/admin", ClassPrivileged},
		{"/admin/orders", ClassPrivileged},
		{"/api/admin/users", ClassPrivileged},
		// Unlisted paths fall back to Protected
		{"/menu", ClassProtected},
		{"/api/loyalty", ClassProtected},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, table.Classify(tt.path), "path %s", tt.path)
	}
}

func TestTable_RootMatchesExactly(t *testing.T) {
	table := testTable()

	assert.Equal(t, ClassPublic, table.Classify("/"))
	assert.Equal(t, ClassProtected, table.Classify("/anything"))
}

func TestTable_PublicWinsOnOverlap(t *testing.T) {
	table := NewTable(
		[]string{"/admin/login"},
		nil,
		[]string{"/admin"},
	)

	assert.Equal(t, ClassPublic, table.Classify("/admin/login"))
	assert.Equal(t, ClassPrivileged, table.Classify("/admin/users"))
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "public", ClassPublic.String())
	assert.Equal(t, "protected", ClassProtected.String())
	assert.Equal(t, "privileged", ClassPrivileged.String())
}
