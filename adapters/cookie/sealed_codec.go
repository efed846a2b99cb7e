package cookie

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/walletauth/core"
	"github.com/layer-3/walletauth/ports"
	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the minimum length of the cookie secret
const MinSecretLength = 32

const (
	infoEncryption = "walletauth cookie encryption v1"
	infoSigning    = "walletauth cookie signing v1"
)

// SealedCodec implements the SessionCodec interface.
// A session is signed as an HS256 JWT, then encrypted into a compact JWE
// (dir + A256GCM). Both keys are derived from one secret with HKDF-SHA256.
type SealedCodec struct {
	encKey []byte
	macKey []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSealedCodec creates a codec whose cookies live for ttl after each save
func NewSealedCodec(secret []byte, ttl time.Duration) (ports.SessionCodec, error) {
	return newSealedCodec(secret, ttl, time.Now)
}

func newSealedCodec(secret []byte, ttl time.Duration, now func() time.Time) (*SealedCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("cookie secret must be at least %d bytes", MinSecretLength)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}

	encKey, err := deriveKey(secret, infoEncryption)
	if err != nil {
		return nil, err
	}
	macKey, err := deriveKey(secret, infoSigning)
	if err != nil {
		return nil, err
	}

	return &SealedCodec{encKey: encKey, macKey: macKey, ttl: ttl, now: now}, nil
}

func deriveKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// Encode seals the session into a cookie value.
// It assigns an ID and issue time to a new session and extends its expiry.
func (c *SealedCodec) Encode(session *core.Session) (string, error) {
	now := c.now()
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.IssuedAt.IsZero() {
		session.IssuedAt = now
	}
	session.ExpiresAt = now.Add(c.ttl)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		Address:       session.Address,
		Authenticated: session.Authenticated,
		TempNonce:     session.TempNonce,
		TempAddress:   session.TempAddress,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.macKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	encrypter, err := jose.NewEncrypter(
		jose.A256GCM,
		jose.Recipient{Algorithm: jose.DIRECT, Key: c.encKey},
		(&jose.EncrypterOptions{}).WithContentType("JWT"),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create encrypter: %w", err)
	}

	obj, err := encrypter.Encrypt([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to encrypt session: %w", err)
	}

	return obj.CompactSerialize()
}

// Decode opens a cookie value. Every failure wraps core.ErrInvalidSession.
func (c *SealedCodec) Decode(value string) (*core.Session, error) {
	obj, err := jose.ParseEncrypted(value, []jose.KeyAlgorithm{jose.DIRECT}, []jose.ContentEncryption{jose.A256GCM})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse cookie: %v", core.ErrInvalidSession, err)
	}

	plaintext, err := obj.Decrypt(c.encKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decrypt cookie: %v", core.ErrInvalidSession, err)
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(string(plaintext), claims, func(token *jwt.Token) (interface{}, error) {
		return c.macKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(AudienceSession),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse token: %v", core.ErrInvalidSession, err)
	}
	if !token.Valid || claims.ID == "" {
		return nil, core.ErrInvalidSession
	}
	if claims.Authenticated && (claims.Address == "" || claims.TempNonce != "" || claims.TempAddress != "") {
		return nil, fmt.Errorf("%w: inconsistent authenticated state", core.ErrInvalidSession)
	}

	session := &core.Session{
		Address:       claims.Address,
		Authenticated: claims.Authenticated,
		TempNonce:     claims.TempNonce,
		TempAddress:   claims.TempAddress,
		ID:            claims.ID,
		ExpiresAt:     claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}

	return session, nil
}
