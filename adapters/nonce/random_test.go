package nonce

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAlphabetAndLength(t *testing.T) {
	for _, length := range []int{1, 10, 32, 100} {
		n, err := Generate(length)
		require.NoError(t, err)
		assert.Len(t, n, length)
		for _, r := range n {
			assert.True(t, strings.ContainsRune(Alphabet, r), "unexpected symbol %q", r)
		}
	}
}

func TestGenerateRejectsInvalidLength(t *testing.T) {
	_, err := Generate(0)
	assert.Error(t, err)
}

func TestRandomGeneratorDefaultLength(t *testing.T) {
	g := NewRandomGenerator(0)
	n, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, n, DefaultLength)
}

func TestGenerateDistinct(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		n, err := Generate(DefaultLength)
		require.NoError(t, err)
		_, dup := seen[n]
		require.False(t, dup, "duplicate nonce %s", n)
		seen[n] = struct{}{}
	}
}

func TestGenerateSkipsBiasedBytes(t *testing.T) {
	// 248..255 must be discarded, 0 maps to 'A' and 61 maps to '9'
	src := bytes.NewReader([]byte{255, 248, 0, 61, 62, 0, 0, 0, 0, 0, 0, 0})
	n, err := generate(src, 3)
	require.NoError(t, err)
	assert.Equal(t, "A9A", n)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

func TestGenerateSourceError(t *testing.T) {
	_, err := generate(failingReader{}, 10)
	assert.ErrorContains(t, err, "boom")
}
