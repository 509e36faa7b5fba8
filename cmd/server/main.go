// Command server runs the identity core HTTP API.
//
// Configuration is read from the environment; see internal/pkg/config.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/propertyhub/identity-core/internal/api"
	"github.com/propertyhub/identity-core/internal/api/handler"
	"github.com/propertyhub/identity-core/internal/core/service"
	mongodb "github.com/propertyhub/identity-core/internal/infrastructure/db/mongo"
	redisdb "github.com/propertyhub/identity-core/internal/infrastructure/db/redis"
	"github.com/propertyhub/identity-core/internal/infrastructure/queue"
	"github.com/propertyhub/identity-core/internal/infrastructure/security"
	"github.com/propertyhub/identity-core/internal/pkg/config"
	"github.com/propertyhub/identity-core/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Service: "identity-core",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
	})

	if err := run(cfg, log); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		if err := mongodb.Disconnect(mongoClient); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()

	identities := mongodb.NewIdentityRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("identity indexes: %w", err)
	}
	auditRepo := mongodb.NewAuditRepository(db)
	if err := auditRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}

	codec, err := security.NewJWTCodec(security.TokenConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		TTL:    cfg.Auth.TokenTTL,
		Issuer: cfg.Auth.JWTIssuer,
	})
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	// Audit workers outlive the request context so queued events are flushed.
	auditCtx, stopAudit := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, logger.Component(log, "audit"))
	dispatcher.Start(auditCtx)
	defer func() {
		stopAudit()
		dispatcher.Wait()
	}()

	opts := []service.AuthOption{service.WithAuditSink(dispatcher)}
	readiness := map[string]handler.Pinger{"mongo": handler.MongoPinger(db)}

	if cfg.ThrottleEnabled() {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()

		throttle := redisdb.NewLoginThrottle(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginLockoutWindow)
		opts = append(opts, service.WithLoginThrottle(throttle))
		readiness["redis"] = handler.RedisPinger(rdb)
		log.Info().Int("max_attempts", cfg.Auth.LoginMaxAttempts).Dur("window", cfg.Auth.LoginLockoutWindow).Msg("login throttle enabled")
	}

	authService, err := service.NewAuthService(
		identities,
		security.NewBcryptHasher(cfg.Auth.BcryptCost),
		codec,
		logger.Component(log, "auth"),
		opts...,
	)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Auth:       authService,
		Identities: service.NewIdentityService(identities),
		Tokens:     codec,
		Readiness:  readiness,
		Log:        logger.Component(log, "http"),
		Metrics:    true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("identity core listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
