package cookie

import (
	"strings"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/layer-3/walletauth/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestCodec(t *testing.T, now func() time.Time) *SealedCodec {
	t.Helper()
	c, err := newSealedCodec(testSecret, time.Hour, now)
	require.NoError(t, err)
	return c
}

func TestSealedCodecRoundTrip(t *testing.T) {
	c := newTestCodec(t, time.Now)

	in := &core.Session{TempNonce: "N1", TempAddress: "Addr1"}
	value, err := c.Encode(in)
	require.NoError(t, err)
	require.NotEmpty(t, in.ID, "encode assigns an id")
	assert.NotContains(t, value, "Addr1")
	assert.Len(t, strings.Split(value, "."), 5, "compact JWE")

	out, err := c.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, in.Public(), out.Public())
	assert.Equal(t, in.ID, out.ID)
	assert.WithinDuration(t, in.ExpiresAt, out.ExpiresAt, time.Second)

	in.Authenticate("Addr1")
	value, err = c.Encode(in)
	require.NoError(t, err)

	out, err = c.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, core.Session{Address: "Addr1", Authenticated: true}, out.Public())
}

func TestSealedCodecKeepsIDAcrossSaves(t *testing.T) {
	c := newTestCodec(t, time.Now)

	s := core.DefaultSession()
	_, err := c.Encode(s)
	require.NoError(t, err)
	id, issued := s.ID, s.IssuedAt

	_, err = c.Encode(s)
	require.NoError(t, err)
	assert.Equal(t, id, s.ID)
	assert.Equal(t, issued, s.IssuedAt)
}

func TestSealedCodecRejectsTampering(t *testing.T) {
	c := newTestCodec(t, time.Now)

	value, err := c.Encode(&core.Session{TempNonce: "N1", TempAddress: "Addr1"})
	require.NoError(t, err)

	parts := strings.Split(value, ".")
	ct := []byte(parts[3])
	if ct[0] == 'A' {
		ct[0] = 'B'
	} else {
		ct[0] = 'A'
	}
	parts[3] = string(ct)

	_, err = c.Decode(strings.Join(parts, "."))
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestSealedCodecRejectsGarbage(t *testing.T) {
	c := newTestCodec(t, time.Now)

	for _, value := range []string{"", "garbage", "a.b.c.d.e"} {
		_, err := c.Decode(value)
		assert.ErrorIs(t, err, core.ErrInvalidSession, value)
	}
}

func TestSealedCodecRejectsOtherSecret(t *testing.T) {
	c := newTestCodec(t, time.Now)
	value, err := c.Encode(core.DefaultSession())
	require.NoError(t, err)

	other, err := newSealedCodec([]byte("ffffffffffffffffffffffffffffffff"), time.Hour, time.Now)
	require.NoError(t, err)

	_, err = other.Decode(value)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestSealedCodecRejectsExpired(t *testing.T) {
	now := time.Now()
	c := newTestCodec(t, func() time.Time { return now })

	value, err := c.Encode(core.DefaultSession())
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = c.Decode(value)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestSealedCodecRejectsInconsistentState(t *testing.T) {
	c := newTestCodec(t, time.Now)

	// a validly sealed token claiming authentication without an address
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Authenticated: true,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.macKey)
	require.NoError(t, err)

	enc, err := jose.NewEncrypter(jose.A256GCM, jose.Recipient{Algorithm: jose.DIRECT, Key: c.encKey}, nil)
	require.NoError(t, err)
	obj, err := enc.Encrypt([]byte(signed))
	require.NoError(t, err)
	value, err := obj.CompactSerialize()
	require.NoError(t, err)

	_, err = c.Decode(value)
	assert.ErrorIs(t, err, core.ErrInvalidSession)
}

func TestNewSealedCodecValidation(t *testing.T) {
	_, err := NewSealedCodec([]byte("short"), time.Hour)
	assert.Error(t, err)

	_, err = NewSealedCodec(testSecret, 0)
	assert.Error(t, err)
}
