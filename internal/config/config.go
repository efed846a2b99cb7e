package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/layer-3/walletauth/service"
)

// MinAppKeyLength matches the minimum secret length of the cookie codec
const MinAppKeyLength = 32

// Config holds the server configuration.
// Values come from defaults, then an optional TOML file, then the environment.
type Config struct {
	ListenAddr string `toml:"listen_addr" env:"WALLETAUTH_LISTEN_ADDR"`

	// AppKey seals session cookies
	AppKey       string        `toml:"app_key" env:"APP_KEY"`
	CookieName   string        `toml:"cookie_name" env:"WALLETAUTH_COOKIE_NAME"`
	CookieSecure bool          `toml:"cookie_secure" env:"WALLETAUTH_COOKIE_SECURE"`
	SessionTTL   time.Duration `toml:"session_ttl" env:"WALLETAUTH_SESSION_TTL"`

	// Domain is the host in the sign-in message. Empty uses the request host.
	Domain           string `toml:"domain" env:"WALLETAUTH_DOMAIN"`
	ChallengeBinding string `toml:"challenge_binding" env:"WALLETAUTH_CHALLENGE_BINDING"`
	VerifyMessage    bool   `toml:"verify_message" env:"WALLETAUTH_VERIFY_MESSAGE"`
	NonceLength      int    `toml:"nonce_length" env:"WALLETAUTH_NONCE_LENGTH"`

	// RedisURL enables the redis revocation store and event stream
	RedisURL string `toml:"redis_url" env:"REDIS_URL"`

	LogLevel  string `toml:"log_level" env:"WALLETAUTH_LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"WALLETAUTH_LOG_FORMAT"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	return Config{
		ListenAddr:       ":9000",
		CookieName:       "walletauth",
		SessionTTL:       14 * 24 * time.Hour,
		ChallengeBinding: service.BindingStrict.String(),
		VerifyMessage:    true,
		NonceLength:      10,
		LogLevel:         "info",
		LogFormat:        "console",
	}
}

// Load reads .env (if present), the TOML file at path (if not empty) and the
// environment, in that order of increasing precedence.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c Config) Validate() error {
	if len(c.AppKey) < MinAppKeyLength {
		return fmt.Errorf("APP_KEY must be at least %d characters", MinAppKeyLength)
	}
	if c.CookieName == "" {
		return errors.New("cookie name is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if _, err := c.Binding(); err != nil {
		return err
	}
	if c.NonceLength < 8 || c.NonceLength > 64 {
		return fmt.Errorf("nonce length must be between 8 and 64, got %d", c.NonceLength)
	}
	return nil
}

// Binding returns the parsed challenge binding mode
func (c Config) Binding() (service.ChallengeBinding, error) {
	return service.ParseChallengeBinding(c.ChallengeBinding)
}
