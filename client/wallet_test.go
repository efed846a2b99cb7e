package client

import (
	"encoding/base64"
	"testing"

	"github.com/layer-3/walletauth/adapters/signature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPairSignsVerifiableMessages(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	msg := []byte("hello")
	sig, err := kp.SignMessage(msg)
	require.NoError(t, err)

	verifier := signature.NewEd25519Verifier()
	assert.NoError(t, verifier.Verify(kp.Address(), msg, base64.StdEncoding.EncodeToString(sig)))
}

func TestKeyPairFromEncodedSeed(t *testing.T) {
	kp, err := GenerateKeyPair()
	require.NoError(t, err)

	restored, err := KeyPairFromEncodedSeed(kp.EncodedSeed())
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), restored.Address())

	_, err = KeyPairFromEncodedSeed("!!!")
	assert.Error(t, err)

	_, err = KeyPairFromSeed([]byte("short"))
	assert.Error(t, err)
}
