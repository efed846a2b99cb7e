package client

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/layer-3/walletauth/adapters/signature"
)

// Wallet holds an account key and signs sign-in messages
type Wallet interface {
	Address() string
	SignMessage(message []byte) ([]byte, error)
}

// KeyPair is an in-process Ed25519 wallet
type KeyPair struct {
	priv ed25519.PrivateKey
}

// GenerateKeyPair creates a random key pair
func GenerateKeyPair() (*KeyPair, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return &KeyPair{priv: priv}, nil
}

// KeyPairFromSeed rebuilds a key pair from its 32-byte seed
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &KeyPair{priv: ed25519.NewKeyFromSeed(seed)}, nil
}

// KeyPairFromEncodedSeed rebuilds a key pair from a base64 seed
func KeyPairFromEncodedSeed(encoded string) (*KeyPair, error) {
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid seed encoding: %w", err)
	}
	return KeyPairFromSeed(seed)
}

// Address returns the base58 public key
func (k *KeyPair) Address() string {
	return signature.AddressFromPublicKey(k.priv.Public().(ed25519.PublicKey))
}

// EncodedSeed returns the base64 seed
func (k *KeyPair) EncodedSeed() string {
	return base64.StdEncoding.EncodeToString(k.priv.Seed())
}

func (k *KeyPair) SignMessage(message []byte) ([]byte, error) {
	return ed25519.Sign(k.priv, message), nil
}
