package ports

// NonceGenerator produces one-time challenge nonces
type NonceGenerator interface {
	Generate() (string, error)
}

// SignatureVerifier checks a wallet signature over a message
type SignatureVerifier interface {
	// Verify returns nil if signature is a valid signature of message by the
	// key encoded in address
	Verify(address string, message []byte, signature string) error
}
