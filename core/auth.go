package core

import (
	"fmt"
	"time"
)

// SignInStatement is the fixed statement line of the sign-in message
const SignInStatement = "Please sign in."

// Session represents the state carried by the session cookie
type Session struct {
	Address       string `json:"address"`       // Verified account address once authenticated
	Authenticated bool   `json:"authenticated"` // True only after a successful verification
	TempNonce     string `json:"tempNonce"`     // Outstanding challenge nonce
	TempAddress   string `json:"tempAddress"`   // Address that requested the outstanding nonce

	ID        string    `json:"-"` // Session identifier, rotated on sign-in
	IssuedAt  time.Time `json:"-"` // When the cookie was first issued
	ExpiresAt time.Time `json:"-"` // When the cookie stops being accepted
}

// DefaultSession returns an empty, unauthenticated session
func DefaultSession() *Session {
	return &Session{}
}

// BeginChallenge records a pending challenge, replacing any previous one.
// A new challenge always starts a fresh sign-in attempt.
func (s *Session) BeginChallenge(nonce, address string) {
	s.Address = ""
	s.Authenticated = false
	s.TempNonce = nonce
	s.TempAddress = address
}

// Pending reports whether a challenge is waiting to be answered
func (s *Session) Pending() bool {
	return s.TempNonce != "" && s.TempAddress != ""
}

// Authenticate promotes the session and consumes the pending challenge
func (s *Session) Authenticate(address string) {
	s.Address = address
	s.Authenticated = true
	s.TempNonce = ""
	s.TempAddress = ""
}

// Reset clears every field, including the envelope
func (s *Session) Reset() {
	*s = Session{}
}

// Public returns a copy with the envelope fields stripped
func (s *Session) Public() Session {
	return Session{
		Address:       s.Address,
		Authenticated: s.Authenticated,
		TempNonce:     s.TempNonce,
		TempAddress:   s.TempAddress,
	}
}

// SignInMessage builds the exact message a wallet signs to answer a challenge
func SignInMessage(host, address, nonce string) string {
	return fmt.Sprintf("%s wants you to sign in with your account:\n%s\n\n%s\n\nnonce: %s",
		host, address, SignInStatement, nonce)
}
