package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/rongwang/timesheet-server/internal/api"
	"github.com/rongwang/timesheet-server/internal/config"
	"github.com/rongwang/timesheet-server/internal/repository"
	"github.com/rongwang/timesheet-server/internal/service"
	"github.com/rongwang/timesheet-server/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "timesheet-server",
		Short:         "Monthly timesheets with hourly rates, totals and CSV export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newExportCmd(),
	)

	return root
}

// setup loads and validates configuration and builds a logger writing to out
func setup(out io.Writer) (*config.Config, *utils.Logger, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := utils.NewLogger(utils.LoggerConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: out,
	})
	utils.SetDefault(logger)

	return cfg, logger, nil
}

// openService connects to the database, migrates it and wires the service
func openService(cfg *config.Config, logger *utils.Logger) (*sqlx.DB, *service.DefaultService, error) {
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}

	repo := repository.NewSQLRepository(db, logger)
	svc := service.NewDefaultService(repo, cfg.Auth, logger)

	return db, svc, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			db, svc, err := openService(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			// Create API handler
			handler := api.NewHandler(svc, logger)

			// Set up Gin router
			gin.SetMode(gin.ReleaseMode)
			router := gin.New()
			router.Use(gin.Recovery(), api.RequestLogger(logger), api.JWTSecret(cfg.Auth.JWTSecret))

			// Set up routes
			handler.SetupRoutes(router)

			srv := &http.Server{
				Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
				Handler:        router,
				ReadTimeout:    10 * time.Second,
				WriteTimeout:   10 * time.Second,
				IdleTimeout:    60 * time.Second,
				MaxHeaderBytes: 1 << 16,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("starting server", "addr", srv.Addr, "driver", cfg.Database.Driver)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				logger.Info("shutting down server")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			logger.Info("server stopped gracefully")
			return nil
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			// SetupDatabase migrates on connect
			db, err := config.SetupDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			logger.Info("database is up to date", "driver", cfg.Database.Driver)
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var (
		email string
		month int
		year  int
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a user's timesheet for one month as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the CSV
			cfg, logger, err := setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			db, svc, err := openService(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			export, err := svc.ExportByPeriod(cmd.Context(), email, month, year)
			if err != nil {
				return err
			}

			return api.WriteCSV(cmd.OutOrStdout(), export.Rows)
		},
	}

	now := time.Now()
	cmd.Flags().StringVar(&email, "email", "", "email of the timesheet owner")
	cmd.Flags().IntVar(&month, "month", int(now.Month()), "month (1-12)")
	cmd.Flags().IntVar(&year, "year", now.Year(), "year")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
