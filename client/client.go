package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/layer-3/walletauth/core"
	"github.com/rs/zerolog"
)

// APIError is a {success:false} response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("walletauth: %d %s", e.StatusCode, e.Message)
}

// Unwrap maps the server message back to the core error it came from
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return core.ErrUnauthenticated
	case e.StatusCode >= http.StatusInternalServerError:
		return core.ErrInternal
	case e.Message == "Invalid nonce":
		return core.ErrInvalidChallenge
	case e.Message == "Invalid signature":
		return core.ErrInvalidSignature
	case e.StatusCode == http.StatusBadRequest:
		return core.ErrInvalidRequest
	default:
		return nil
	}
}

const (
	maxResponseSize    = 1 << 20
	maxErrorTextLength = 256
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type verifyRequest struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	Signature string `json:"signature"`
}

// Client talks to a walletauth server and keeps a SessionCache in sync
type Client struct {
	baseURL *url.URL
	http    *http.Client
	cache   *SessionCache
	logger  zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. It must carry a cookie jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache shares an existing cache
func WithCache(cache *SessionCache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the client logger
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the server at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	c := &Client{
		baseURL: u,
		cache:   NewSessionCache(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.http = &http.Client{Jar: jar}
	}

	return c, nil
}

// Cache returns the session cache the client writes to
func (c *Client) Cache() *SessionCache {
	return c.cache
}

// Host is the host the server sees in requests from this client
func (c *Client) Host() string {
	return c.baseURL.Host
}

// Nonce requests a challenge for address
func (c *Client) Nonce(ctx context.Context, address string) (string, error) {
	var data struct {
		Nonce string `json:"nonce"`
	}
	q := url.Values{"address": {address}}
	if _, err := c.do(ctx, http.MethodGet, "/auth/nonce", q, nil, &data); err != nil {
		return "", err
	}

	// A new challenge drops the server session back to pending
	c.cache.Replace(core.Session{TempNonce: data.Nonce, TempAddress: address})
	return data.Nonce, nil
}

// Verify submits a signed challenge. signature is the raw signature bytes.
func (c *Client) Verify(ctx context.Context, address, nonce, message string, signature []byte) (core.Session, error) {
	req := verifyRequest{
		Address:   address,
		Nonce:     nonce,
		Message:   message,
		Signature: base64.StdEncoding.EncodeToString(signature),
	}

	var session core.Session
	if _, err := c.do(ctx, http.MethodPost, "/auth/verify", nil, req, &session); err != nil {
		return core.Session{}, err
	}

	return c.cache.Merge(UpdateFrom(session)), nil
}

// Session fetches the current session and whether it is authenticated
func (c *Client) Session(ctx context.Context) (core.Session, bool, error) {
	var session core.Session
	ok, err := c.do(ctx, http.MethodGet, "/auth/session", nil, nil, &session)
	if err != nil {
		return core.Session{}, false, err
	}

	c.cache.Replace(session)
	return session, ok, nil
}

// Logout destroys the server session
func (c *Client) Logout(ctx context.Context) error {
	q := url.Values{"action": {"logout"}}
	if _, err := c.do(ctx, http.MethodGet, "/auth/session", q, nil, nil); err != nil {
		return err
	}

	c.cache.Reset()
	return nil
}

// Me returns the address of the authenticated account
func (c *Client) Me(ctx context.Context) (string, error) {
	var data struct {
		Address string `json:"address"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/api/me", nil, nil, &data); err != nil {
		return "", err
	}
	return data.Address, nil
}

// SignIn runs the full challenge flow for wallet. An empty host uses the
// host of the base URL.
func (c *Client) SignIn(ctx context.Context, wallet Wallet, host string) (core.Session, error) {
	if host == "" {
		host = c.Host()
	}
	address := wallet.Address()

	nonce, err := c.Nonce(ctx, address)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	message := core.SignInMessage(host, address, nonce)
	signature, err := wallet.SignMessage([]byte(message))
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to sign message: %w", err)
	}

	session, err := c.Verify(ctx, address, nonce, message, signature)
	if err != nil {
		return core.Session{}, fmt.Errorf("failed to verify: %w", err)
	}

	c.logger.Info().Str("address", session.Address).Msg("signed in")
	return session, nil
}

// SignOut logs out and clears the cache
func (c *Client) SignOut(ctx context.Context) error {
	return c.Logout(ctx)
}

// Refresh reloads the cache from the server
func (c *Client) Refresh(ctx context.Context) (core.Session, error) {
	session, _, err := c.Session(ctx)
	return session, err
}

// do sends a request and decodes the envelope data into out.
// It returns the envelope success flag.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (bool, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, raw)}
		c.logger.Debug().Err(apiErr).Str("path", path).Msg("request rejected")
		return false, apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return false, fmt.Errorf("failed to decode data: %w", err)
		}
	}

	return env.Success, nil
}

// errorMessage takes the envelope message, else the body text, else the status text
func errorMessage(status int, body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= maxErrorTextLength {
		return text
	}
	return http.StatusText(status)
}

// IsUnauthenticated reports whether err is a 401 from the server
func IsUnauthenticated(err error) bool {
	return errors.Is(err, core.ErrUnauthenticated)
}
