package port

import (
	"context"
	"time"
)

// TokenBlacklist revokes issued JWTs before their natural expiry. Logout
// blacklists a single token by JTI; InvalidateUser revokes every token a
// user was issued before the given instant.
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
	InvalidateUser(ctx context.Context, userID string, at time.Time) error
	IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error)
}
