package ports

import (
	"context"

	"github.com/layer-3/walletauth/core"
)

// SessionCodec converts between sessions and opaque cookie values
type SessionCodec interface {
	Encode(session *core.Session) (string, error)
	Decode(value string) (*core.Session, error)
}

// SessionJar loads and persists the session bound to a single request.
// Load never fails on a missing or unreadable cookie; it returns a default
// session instead.
type SessionJar interface {
	Load(ctx context.Context) (*core.Session, error)
	Save(ctx context.Context, session *core.Session) error
	Destroy(ctx context.Context) error
	// Host is the host the client addressed, used in the sign-in message
	Host() string
}
