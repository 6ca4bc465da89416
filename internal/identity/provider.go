package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Resolved caller session. ExpiresAt is the token expiry, not the cache TTL.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Role struct {
	IsStaff bool `json:"is_staff"`
}

// Provider resolves session tokens and role flags. Both calls touch external
// state and are treated as fallible by the gate pipeline.
type Provider interface {
	// GetSession returns (nil, nil) for a token that is invalid or expired.
	GetSession(ctx context.Context, token string) (*Session, error)

	GetRole(ctx context.Context, userID uuid.UUID) (Role, error)
}
