package signature

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"github.com/mr-tron/base58"
)

// Ed25519Verifier verifies signatures made by base58-addressed Ed25519 accounts
type Ed25519Verifier struct{}

// NewEd25519Verifier creates a new verifier
func NewEd25519Verifier() ports.SignatureVerifier {
	return Ed25519Verifier{}
}

// Verify checks a base64 signature over message against the key in address.
// Every failure, including malformed input, wraps core.ErrInvalidSignature.
func (Ed25519Verifier) Verify(address string, message []byte, signatureStr string) error {
	pubKey, err := PublicKeyFromAddress(address)
	if err != nil {
		return fmt.Errorf("%v: %w", err, core.ErrInvalidSignature)
	}

	sig, err := base64.StdEncoding.DecodeString(signatureStr)
	if err != nil {
		return fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("signature must be %d bytes: %w", ed25519.SignatureSize, core.ErrInvalidSignature)
	}

	if !ed25519.Verify(pubKey, message, sig) {
		return core.ErrInvalidSignature
	}

	return nil
}

// PublicKeyFromAddress decodes a base58 account address into its public key
func PublicKeyFromAddress(address string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(address)
	if err != nil {
		return nil, fmt.Errorf("failed to decode address: %w", err)
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("address must decode to %d bytes, got %d", ed25519.PublicKeySize, len(decoded))
	}
	return ed25519.PublicKey(decoded), nil
}

// AddressFromPublicKey encodes a public key as a base58 account address
func AddressFromPublicKey(pubKey ed25519.PublicKey) string {
	return base58.Encode(pubKey)
}
