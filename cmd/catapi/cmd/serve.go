package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ollivarila/wsk2/internal/api"
	"github.com/ollivarila/wsk2/internal/api/handler"
	"github.com/ollivarila/wsk2/internal/api/middleware"
	"github.com/ollivarila/wsk2/internal/core/auth"
	"github.com/ollivarila/wsk2/internal/core/geotag"
	"github.com/ollivarila/wsk2/internal/core/ports"
	"github.com/ollivarila/wsk2/internal/core/service"
	redisdb "github.com/ollivarila/wsk2/internal/infrastructure/db/redis"
	"github.com/ollivarila/wsk2/internal/infrastructure/queue"
	"github.com/ollivarila/wsk2/internal/infrastructure/storage"
	"github.com/ollivarila/wsk2/internal/infrastructure/thumbnail"
	"github.com/ollivarila/wsk2/internal/pkg/config"
)

const (
	shutdownTimeout  = 10 * time.Second
	rateLimitScope   = "graphql"
	redisProbeWindow = 2 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("failed to close store")
		}
	}()

	tokens, err := auth.NewResolver(auth.ResolverConfig{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL,
	})
	if err != nil {
		return err
	}

	opts := service.Options{EmptyListNotFound: cfg.EmptyListNotFound}
	authService := service.NewAuthService(st.users, tokens, log)
	userService := service.NewUserService(st.users, st.cats, opts, log)
	catService := service.NewCatService(st.cats, st.users, opts, log)

	photos, err := openPhotoStore(ctx, cfg.Photos)
	if err != nil {
		return fmt.Errorf("failed to open photo store: %w", err)
	}

	// Workers are stopped after the HTTP server, not by the signal itself.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	dispatcher := queue.NewDispatcher(cfg.Thumbnails.Workers, thumbnail.NewGenerator(photos), log)
	dispatcher.Start(workerCtx)

	checks := st.checks
	var limiter middleware.Limiter
	if cfg.RateLimit.Enabled {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			stopWorkers()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		limiter = redisdb.NewRateLimiter(rdb, rateLimitScope, cfg.RateLimit.Max, cfg.RateLimit.Window)
		checks["redis"] = func(ctx context.Context) error {
			return redisdb.Ping(ctx, rdb, redisProbeWindow)
		}
		log.Info().
			Int("max", cfg.RateLimit.Max).
			Dur("window", cfg.RateLimit.Window).
			Msg("graphql rate limiting enabled")
	}

	e, err := api.NewRouter(api.Deps{
		Log:       log,
		Dev:       cfg.IsDevelopment(),
		Principal: tokens,
		Auth:      authService,
		Users:     userService,
		Cats:      catService,
		Photos:    handler.NewPhotoIntake(photos, geotag.NewExtractor(log), dispatcher, log),
		Limiter:   limiter,
		Health:    checks,
	})
	if err != nil {
		stopWorkers()
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil {
			stopWorkers()
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopWorkers()
	dispatcher.Wait()
	log.Info().Msg("server stopped")
	return nil
}

func openPhotoStore(ctx context.Context, pc config.PhotoConfig) (ports.PhotoStore, error) {
	if pc.Store == config.PhotoStoreS3 {
		log.Info().Str("bucket", pc.Bucket).Msg("storing photos in s3")
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:   pc.Bucket,
			Region:   pc.Region,
			Endpoint: pc.Endpoint,
			Prefix:   pc.Prefix,
		})
	}
	log.Info().Str("dir", pc.Dir).Msg("storing photos on disk")
	return storage.NewDiskStore(pc.Dir)
}
