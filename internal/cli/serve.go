package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/meikuraledutech/flow"
	"github.com/meikuraledutech/flow/internal/config"
	"github.com/meikuraledutech/flow/memory"
	"github.com/meikuraledutech/flow/postgres"
	"github.com/meikuraledutech/flow/server"
	"github.com/meikuraledutech/flow/sqlite"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the flow service",
		Long: `Serve exposes GET/PUT /flow/{ownerId}, validation, flow descriptions and
the node type catalog over HTTP, backed by the configured store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := configFromContext(ctx)
			logger := loggerFromContext(ctx)
			if listen != "" {
				cfg.Listen = listen
			}

			store, closeStore, err := openStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			app := server.New(store, server.WithLogger(logger))
			logger.Info("serving flows", "addr", cfg.Listen, "store", cfg.Store.Driver)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return app.Listen(cfg.Listen, fiber.ListenConfig{DisableStartupMessage: true})
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				logger.Info("shutting down")
				return app.ShutdownWithContext(sctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (overrides config)")
	return cmd
}

// openStore connects the configured backend. The returned func releases it.
func openStore(ctx context.Context, c config.StoreConfig) (flow.Store, func(), error) {
	switch c.Driver {
	case config.DriverMemory:
		return memory.New(), func() {}, nil

	case config.DriverSQLite:
		s, err := sqlite.Open(ctx, c.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		s := postgres.New(pool)
		if err := s.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		return s, pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", c.Driver)
}
