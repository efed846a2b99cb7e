package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/rs/zerolog"
)

// CookieOptions controls the session cookie
type CookieOptions struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// cookieJar implements the SessionJar interface on top of a gin request
type cookieJar struct {
	c      *gin.Context
	codec  ports.SessionCodec
	opts   CookieOptions
	logger zerolog.Logger
}

func newCookieJar(c *gin.Context, codec ports.SessionCodec, opts CookieOptions, logger zerolog.Logger) ports.SessionJar {
	return &cookieJar{c: c, codec: codec, opts: opts, logger: logger}
}

// Load decodes the session cookie. A missing or unreadable cookie is a default session.
func (j *cookieJar) Load(ctx context.Context) (*core.Session, error) {
	value, err := j.c.Cookie(j.opts.Name)
	if err != nil || value == "" {
		return core.DefaultSession(), nil
	}

	session, err := j.codec.Decode(value)
	if err != nil {
		j.logger.Debug().Err(err).Msg("discarding unreadable session cookie")
		return core.DefaultSession(), nil
	}

	return session, nil
}

// Save seals the session into the response cookie
func (j *cookieJar) Save(ctx context.Context, session *core.Session) error {
	value, err := j.codec.Encode(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	j.c.SetSameSite(http.SameSiteLaxMode)
	j.c.SetCookie(j.opts.Name, value, int(j.opts.TTL/time.Second), "/", "", j.opts.Secure, true)

	return nil
}

// Destroy expires the session cookie
func (j *cookieJar) Destroy(ctx context.Context) error {
	j.c.SetSameSite(http.SameSiteLaxMode)
	j.c.SetCookie(j.opts.Name, "", -1, "/", "", j.opts.Secure, true)
	return nil
}

// Host returns the host the client addressed
func (j *cookieJar) Host() string {
	return j.c.Request.Host
}
