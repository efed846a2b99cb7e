package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignInMessage(t *testing.T) {
	msg := SignInMessage("example.com", "Addr1", "N1")
	assert.Equal(t, "example.com wants you to sign in with your account:\nAddr1\n\nPlease sign in.\n\nnonce: N1", msg)
}

func TestSessionTransitions(t *testing.T) {
	s := DefaultSession()
	assert.False(t, s.Pending())

	s.BeginChallenge("N1", "Addr1")
	assert.True(t, s.Pending())
	assert.Equal(t, "N1", s.TempNonce)
	assert.Equal(t, "Addr1", s.TempAddress)

	s.BeginChallenge("N2", "Addr1")
	assert.Equal(t, "N2", s.TempNonce)

	s.Authenticate("Addr1")
	assert.True(t, s.Authenticated)
	assert.Equal(t, "Addr1", s.Address)
	assert.Empty(t, s.TempNonce)
	assert.Empty(t, s.TempAddress)
	assert.False(t, s.Pending())

	// a new challenge drops authentication
	s.BeginChallenge("N3", "Addr2")
	assert.False(t, s.Authenticated)
	assert.Empty(t, s.Address)

	s.ID = "abc"
	s.Reset()
	assert.Equal(t, Session{}, *s)
}

func TestSessionJSONHidesEnvelope(t *testing.T) {
	s := &Session{Address: "Addr1", Authenticated: true, ID: "secret-id"}

	raw, err := json.Marshal(s.Public())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Len(t, fields, 4)
	assert.Equal(t, "Addr1", fields["address"])
	assert.Equal(t, true, fields["authenticated"])
	assert.Equal(t, "", fields["tempNonce"])
	assert.Equal(t, "", fields["tempAddress"])
}
