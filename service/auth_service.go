package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/rs/zerolog"
)

// VerifyRequest is the answer to a challenge submitted by a wallet
type VerifyRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Signature string `json:"signature"` // base64 encoded
}

// AuthService handles authentication business logic
type AuthService struct {
	nonces   ports.NonceGenerator
	verifier ports.SignatureVerifier
	store    ports.Store
	eventPub ports.EventPublisher
	logger   zerolog.Logger

	binding       ChallengeBinding
	verifyMessage bool
	domain        string
	sessionTTL    time.Duration
	now           func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	nonces ports.NonceGenerator,
	verifier ports.SignatureVerifier,
	store ports.Store,
	eventPub ports.EventPublisher,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		nonces:        nonces,
		verifier:      verifier,
		store:         store,
		eventPub:      eventPub,
		logger:        zerolog.Nop(),
		binding:       BindingStrict,
		verifyMessage: true,
		sessionTTL:    14 * 24 * time.Hour, // 14 days
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueNonce binds a fresh nonce to address in the session and returns it.
// Any pending challenge is replaced.
func (s *AuthService) IssueNonce(ctx context.Context, jar ports.SessionJar, address string) (string, error) {
	if !present(address) {
		return "", fmt.Errorf("missing address: %w", core.ErrInvalidRequest)
	}

	nonce, err := s.nonces.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	session, err := s.loadSession(ctx, jar)
	if err != nil {
		return "", err
	}

	session.BeginChallenge(nonce, address)

	if err := jar.Save(ctx, session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return nonce, nil
}

// Verify checks a signed challenge and promotes the session to authenticated.
// On any failure the stored session is left untouched, so the same nonce can
// be answered again.
func (s *AuthService) Verify(ctx context.Context, jar ports.SessionJar, req VerifyRequest) (*core.Session, error) {
	if !present(req.Address) || !present(req.Nonce) || !present(req.Message) || !present(req.Signature) {
		return nil, fmt.Errorf("missing parameters: %w", core.ErrInvalidRequest)
	}

	session, err := s.loadSession(ctx, jar)
	if err != nil {
		return nil, err
	}

	if !s.binding.matches(session, req) {
		return nil, fmt.Errorf("nonce and address do not match the pending challenge: %w", core.ErrInvalidChallenge)
	}

	if s.verifyMessage {
		expected := core.SignInMessage(s.host(jar), req.Address, session.TempNonce)
		if req.Message != expected {
			return nil, fmt.Errorf("signed message does not match the issued challenge: %w", core.ErrInvalidSignature)
		}
	}

	if err := s.verifier.Verify(req.Address, []byte(req.Message), req.Signature); err != nil {
		return nil, fmt.Errorf("signature verification failed: %w", err)
	}

	// Rotate the session ID so a cookie captured before sign-in stays anonymous
	previousID := session.ID
	previousExpiry := session.ExpiresAt

	session.Authenticate(req.Address)
	session.ID = ""
	session.IssuedAt = time.Time{}

	if err := jar.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	if previousID != "" {
		if err := s.store.RevokeSession(ctx, previousID, s.remaining(previousExpiry)); err != nil {
			s.logger.Warn().Err(err).Str("session_id", previousID).Msg("failed to revoke pre-authentication session")
		}
	}

	if err := s.eventPub.PublishSignIn(ctx, session.Address, session.ID); err != nil {
		s.logger.Warn().Err(err).Str("address", session.Address).Msg("failed to publish sign-in event")
	}

	s.logger.Info().Str("address", session.Address).Str("session_id", session.ID).Msg("session authenticated")

	return session, nil
}

// Session returns the current session and whether it is authenticated.
// Unauthenticated callers get the default session.
func (s *AuthService) Session(ctx context.Context, jar ports.SessionJar) (*core.Session, bool, error) {
	session, err := s.loadSession(ctx, jar)
	if err != nil {
		return core.DefaultSession(), false, err
	}

	if !session.Authenticated {
		return core.DefaultSession(), false, nil
	}

	return session, true, nil
}

// Logout destroys the session unconditionally and returns the default session.
// Destroying a missing session succeeds.
func (s *AuthService) Logout(ctx context.Context, jar ports.SessionJar) (*core.Session, error) {
	session, err := s.loadSession(ctx, jar)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load session during logout")
		session = core.DefaultSession()
	}

	if session.ID != "" {
		// Revoke the ID so copies of the cookie are refused until they expire
		if err := s.store.RevokeSession(ctx, session.ID, s.remaining(session.ExpiresAt)); err != nil {
			s.logger.Warn().Err(err).Str("session_id", session.ID).Msg("failed to revoke session")
		}
	}

	if session.Authenticated {
		if err := s.eventPub.PublishLogout(ctx, session.Address, session.ID); err != nil {
			s.logger.Warn().Err(err).Str("address", session.Address).Msg("failed to publish logout event")
		}
		s.logger.Info().Str("address", session.Address).Str("session_id", session.ID).Msg("session destroyed")
	}

	if err := jar.Destroy(ctx); err != nil {
		return nil, fmt.Errorf("failed to destroy session: %w", err)
	}

	return core.DefaultSession(), nil
}

// loadSession reads the session and discards it if its ID was revoked
func (s *AuthService) loadSession(ctx context.Context, jar ports.SessionJar) (*core.Session, error) {
	session, err := jar.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.ID == "" {
		return session, nil
	}

	revoked, err := s.store.IsSessionRevoked(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check session revocation: %w", err)
	}
	if revoked {
		s.logger.Debug().Str("session_id", session.ID).Msg("ignoring revoked session")
		return core.DefaultSession(), nil
	}

	return session, nil
}

// present reports whether a required input carries more than whitespace
func present(value string) bool {
	return strings.TrimSpace(value) != ""
}

func (s *AuthService) host(jar ports.SessionJar) string {
	if s.domain != "" {
		return s.domain
	}
	return jar.Host()
}

// remaining is how long a cookie expiring at expiresAt can still be presented
func (s *AuthService) remaining(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return s.sessionTTL
	}
	return expiresAt.Sub(s.now())
}
