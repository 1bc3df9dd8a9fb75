package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-trademart-backend/internal/auth"
	"github.com/tbourn/go-trademart-backend/internal/config"
	httpapi "github.com/tbourn/go-trademart-backend/internal/http"
	"github.com/tbourn/go-trademart-backend/internal/observability"
	"github.com/tbourn/go-trademart-backend/internal/repo"
)

const (
	shutdownTimeout = 15 * time.Second
	purgeInterval   = 10 * time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, c config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, c.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer closeDB(db)
	if c.DB.AutoMigrate {
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	caps := repo.DetectCapabilities(ctx, db)
	log.Info().Interface("capabilities", caps).Str("driver", c.DB.Driver).Msg("database ready")

	provider, err := auth.NewProviderVerifier(ctx, c.Auth)
	if err != nil {
		return fmt.Errorf("auth provider: %w", err)
	}
	sessions, err := auth.NewSessionManager(c.Session.Secret, c.Session.TTL)
	if err != nil {
		return fmt.Errorf("sessions: %w", err)
	}

	var rdb *redis.Client
	if c.RedisURL != "" {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return fmt.Errorf("REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable; rate limiting fails open until it recovers")
		}
	}

	gin.SetMode(c.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Caps:     caps,
		Provider: provider,
		Sessions: sessions,
		Redis:    rdb,
	}, c)

	go purgeIdempotency(ctx, db)

	srv := &http.Server{
		Addr:              ":" + c.Port,
		Handler:           r,
		ReadTimeout:       c.ReadTimeout,
		ReadHeaderTimeout: c.ReadHeaderTimeout,
		WriteTimeout:      c.WriteTimeout,
		IdleTimeout:       c.IdleTimeout,
		MaxHeaderBytes:    c.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", c.APIBasePath).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}

// purgeIdempotency deletes expired idempotency records until ctx ends.
func purgeIdempotency(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
