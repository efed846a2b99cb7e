package nonce

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/layer-3/walletauth/ports"
)

const (
	// Alphabet is the set of symbols a nonce is drawn from
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	// DefaultLength gives roughly 59.5 bits of entropy
	DefaultLength = 10

	// bytes at or above this value are discarded so every symbol is equally likely
	rejectAbove = 256 - 256%len(Alphabet)
)

// RandomGenerator implements the NonceGenerator interface using crypto/rand
type RandomGenerator struct {
	length int
	source io.Reader
}

// NewRandomGenerator creates a generator for nonces of the given length
func NewRandomGenerator(length int) ports.NonceGenerator {
	if length <= 0 {
		length = DefaultLength
	}
	return &RandomGenerator{length: length, source: rand.Reader}
}

// Generate returns a new nonce
func (g *RandomGenerator) Generate() (string, error) {
	return generate(g.source, g.length)
}

// Generate returns a nonce of the given length read from crypto/rand
func Generate(length int) (string, error) {
	return generate(rand.Reader, length)
}

func generate(source io.Reader, length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid nonce length %d", length)
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/2)
	for len(out) < length {
		if _, err := io.ReadFull(source, buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectAbove {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
