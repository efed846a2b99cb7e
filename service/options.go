package service

import (
	"fmt"
	"time"

	"github.com/layer-3/walletauth/core"
	"github.com/rs/zerolog"
)

// ChallengeBinding decides how a verify request is matched to the pending challenge
type ChallengeBinding int

const (
	// BindingStrict requires both the nonce and the address to match
	BindingStrict ChallengeBinding = iota
	// BindingEither accepts a match on the nonce or on the address.
	// It exists for clients of the first release and should not be enabled
	// for new deployments: it lets a nonce issued to one address be answered
	// by another.
	BindingEither
)

// ParseChallengeBinding parses "strict" or "either"
func ParseChallengeBinding(s string) (ChallengeBinding, error) {
	switch s {
	case "", "strict":
		return BindingStrict, nil
	case "either":
		return BindingEither, nil
	default:
		return BindingStrict, fmt.Errorf("unknown challenge binding %q", s)
	}
}

func (b ChallengeBinding) String() string {
	if b == BindingEither {
		return "either"
	}
	return "strict"
}

func (b ChallengeBinding) matches(session *core.Session, req VerifyRequest) bool {
	nonceOK := session.TempNonce != "" && req.Nonce == session.TempNonce
	addressOK := session.TempAddress != "" && req.Address == session.TempAddress

	if b == BindingEither {
		return nonceOK || addressOK
	}
	return nonceOK && addressOK
}

// Option configures an AuthService
type Option func(*AuthService)

// WithBinding sets the challenge binding mode
func WithBinding(binding ChallengeBinding) Option {
	return func(s *AuthService) { s.binding = binding }
}

// WithMessageCheck toggles comparing the signed message with the rebuilt challenge
func WithMessageCheck(enabled bool) Option {
	return func(s *AuthService) { s.verifyMessage = enabled }
}

// WithDomain fixes the host used in the sign-in message
func WithDomain(domain string) Option {
	return func(s *AuthService) { s.domain = domain }
}

// WithSessionTTL sets the cookie lifetime used for revocations of unknown age
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *AuthService) { s.sessionTTL = ttl }
}

// WithLogger sets the service logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *AuthService) { s.logger = logger }
}
