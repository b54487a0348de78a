package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/monocle-dev/projectboard/db"
	"github.com/monocle-dev/projectboard/internal/config"
	"github.com/monocle-dev/projectboard/internal/logging"
	"github.com/monocle-dev/projectboard/internal/realtime"
	"github.com/monocle-dev/projectboard/internal/repository"
	"github.com/monocle-dev/projectboard/internal/router"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var noMigrate bool

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.EnvFile)
			if err != nil {
				return err
			}
			if noMigrate {
				cfg.AutoMigrate = false
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().BoolVar(&noMigrate, "no-migrate", false, "skip applying migrations on startup")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.AutoMigrate {
		if err := db.RunMigrations(cfg.Database, logger); err != nil {
			return err
		}
	}

	gdb, err := db.Connect(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}()

	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	hub := realtime.NewHub(cfg.AllowedOrigins, logger)
	defer hub.Close()

	r := router.NewRouter(router.Dependencies{
		Projects:       repository.NewProjectRepository(gdb),
		Actions:        repository.NewActionRepository(gdb),
		Hub:            hub,
		DB:             sqlDB,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", cfg.Env),
			zap.String("driver", cfg.Database.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
