package core

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrInvalidChallenge = errors.New("invalid challenge")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidSession   = errors.New("invalid session")
	ErrUnauthenticated  = errors.New("not authenticated")
	ErrInternal         = errors.New("internal error")
)
