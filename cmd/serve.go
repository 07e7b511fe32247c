package main

import (
	"context"
	"os/signal"
	"syscall"

	"manytomany/database"
	"manytomany/migrations"
	"manytomany/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long:  "Apply pending migrations, then serve HTTP until SIGINT or SIGTERM.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply pending migrations on startup")
	return cmd
}

func serve(ctx context.Context, skipMigrations bool) error {
	db, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	if !skipMigrations {
		if err := migrations.Run(ctx, db, cfg.MigrationsDir, "up", logger); err != nil {
			return err
		}
	}

	handler, err := server.NewHandler(cfg, db, logger)
	if err != nil {
		return err
	}

	return server.New(cfg, handler, logger).Run(ctx)
}
