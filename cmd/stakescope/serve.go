package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stakescope/stakescope/internal/application"
	"github.com/stakescope/stakescope/internal/application/metadata"
	"github.com/stakescope/stakescope/internal/config"
	"github.com/stakescope/stakescope/internal/infrastructure/cache"
	"github.com/stakescope/stakescope/internal/infrastructure/db"
	"github.com/stakescope/stakescope/internal/infrastructure/ratelimit"
	httpserver "github.com/stakescope/stakescope/internal/interfaces/http"
	"github.com/stakescope/stakescope/internal/interfaces/http/handlers"
	"github.com/stakescope/stakescope/internal/persistence/postgres"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analytics HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := db.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer stores.Close()

	store, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer store.Close()

	metrics := httpserver.NewMetricsRegistry()

	repos := application.Repos{
		Operators:   postgres.NewOperatorRepo(stores.Analytics, cfg.Database.QueryTimeout),
		Allocations: postgres.NewAllocationRepo(stores.Analytics, cfg.Database.QueryTimeout),
		Commission:  postgres.NewCommissionRepo(stores.Analytics, cfg.Database.QueryTimeout),
		Snapshots:   postgres.NewSnapshotRepo(stores.Analytics, cfg.Database.QueryTimeout),
	}

	orchestrator := application.New(store, repos, application.Options{
		TTL:               cfg.CacheTTL,
		VolatilityEpsilon: cfg.Analytics.VolatilityEpsilon,
		RiskWeights:       cfg.Analytics.RiskWeights,
		Observer:          metrics,
	})

	var profiles handlers.ProfileSource
	if cfg.Metadata.BaseURL != "" {
		profiles = metadata.New(cfg.Metadata, store, cfg.CacheTTL.Static)
	}

	h := handlers.New(orchestrator, profiles).WithHealthChecks(
		redisCheck{store},
		postgresCheck{stores},
	)

	limiter := ratelimit.New(store.Client(), cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)

	server, err := httpserver.NewServer(cfg.Server, h, limiter, metrics)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func invalidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <address>",
		Short: "Drop all cached analytics for one operator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			store, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			defer store.Close()

			orchestrator := application.New(store, application.Repos{}, application.Options{
				TTL: cfg.CacheTTL,
			})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := orchestrator.InvalidateOperator(ctx, args[0]); err != nil {
				return err
			}
			log.Info().Str("address", args[0]).Msg("cache invalidated")
			return nil
		},
	}
}

type redisCheck struct {
	store *cache.Store
}

func (c redisCheck) Name() string { return "redis" }

func (c redisCheck) Check(ctx context.Context) error {
	return c.store.Client().Ping(ctx).Err()
}

type postgresCheck struct {
	stores *db.Stores
}

func (c postgresCheck) Name() string { return "postgres" }

func (c postgresCheck) Check(ctx context.Context) error {
	return c.stores.Analytics.PingContext(ctx)
}
