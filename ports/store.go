package ports

import (
	"context"
	"time"
)

// Store keeps revoked session IDs until their cookies would have expired
type Store interface {
	RevokeSession(ctx context.Context, sessionID string, expiry time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}
