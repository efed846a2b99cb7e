package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/walletauth/adapters/cookie"
	"github.com/layer-3/walletauth/adapters/events"
	"github.com/layer-3/walletauth/adapters/nonce"
	"github.com/layer-3/walletauth/adapters/signature"
	"github.com/layer-3/walletauth/adapters/store"
	"github.com/layer-3/walletauth/internal/config"
	"github.com/layer-3/walletauth/internal/logging"
	"github.com/layer-3/walletauth/internal/metrics"
	"github.com/layer-3/walletauth/ports"
	"github.com/layer-3/walletauth/service"
	transport "github.com/layer-3/walletauth/transport/http"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				EnvVars: []string{"WALLETAUTH_CONFIG"},
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			return serve(c.Context, cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	binding, err := cfg.Binding()
	if err != nil {
		return err
	}
	if binding == service.BindingEither {
		logger.Warn().Msg("challenge binding is \"either\": a nonce may be answered by a different address")
	}

	codec, err := cookie.NewSealedCodec([]byte(cfg.AppKey), cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("failed to create cookie codec: %w", err)
	}

	revocations, publisher, closeBackends, err := setupBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackends()

	authService := service.NewAuthService(
		nonce.NewRandomGenerator(cfg.NonceLength),
		signature.NewEd25519Verifier(),
		revocations,
		events.NewWatermillPublisher(publisher),
		service.WithBinding(binding),
		service.WithMessageCheck(cfg.VerifyMessage),
		service.WithDomain(cfg.Domain),
		service.WithSessionTTL(cfg.SessionTTL),
		service.WithLogger(logging.Module(logger, "auth")),
	)

	if logger.GetLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	router := transport.SetupRouter(authService, transport.RouterConfig{
		Codec: codec,
		Cookie: transport.CookieOptions{
			Name:   cfg.CookieName,
			Secure: cfg.CookieSecure,
			TTL:    cfg.SessionTTL,
		},
		Metrics: metrics.New(),
		Logger:  logging.Module(logger, "http"),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}

	return nil
}

// setupBackends picks redis when configured and in-process backends otherwise
func setupBackends(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ports.Store, message.Publisher, func(), error) {
	wmLogger := events.NewZerologAdapter(logging.Module(logger, "events"))

	if cfg.RedisURL == "" {
		logger.Info().Msg("REDIS_URL not set, using in-memory revocation store")
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		return store.NewMemoryStore(), pubSub, func() { _ = pubSub.Close() }, nil
	}

	// Parse Redis URL and create client
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)

	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		_ = redisClient.Close()
		return nil, nil, nil, fmt.Errorf("failed to create redis publisher: %w", err)
	}

	closeAll := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close publisher")
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	return store.NewRedisStore(redisClient), publisher, closeAll, nil
}
