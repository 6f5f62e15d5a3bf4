package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fulfillment/cmd"
	"fulfillment/internal/pkg/logger"
	"fulfillment/internal/pkg/tracing"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const serviceName = "fulfillment"

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}

type app struct {
	envFile string
	cfg     cmd.Config
	logger  *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Order lifecycle, stock ledger and payment service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := cmd.LoadConfig(a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger.New(logger.Options{Service: serviceName, Env: cfg.AppEnv, Level: cfg.LogLevel})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional dotenv file")

	var migrateOnStart bool
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.serve(c.Context(), migrateOnStart)
		},
	}
	serve.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply schema migrations before serving")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.withRoot(c.Context(), func(root *cmd.CompositionRoot) error {
				if err := root.Migrate(c.Context()); err != nil {
					return err
				}
				a.logger.InfoContext(c.Context(), "Schema migrated")
				return nil
			})
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare stockOnHand with the stock ledger once",
		RunE: func(c *cobra.Command, _ []string) error {
			return a.withRoot(c.Context(), func(root *cmd.CompositionRoot) error {
				found, err := root.CreateJobManager().StockReconciliation().Run(c.Context())
				if err != nil {
					return err
				}
				if len(found) > 0 {
					return fmt.Errorf("%d variant(s) disagree with their stock ledger", len(found))
				}
				a.logger.InfoContext(c.Context(), "Stock ledger consistent")
				return nil
			})
		},
	}

	root.AddCommand(serve, migrate, reconcile)
	return root
}

func (a *app) withRoot(ctx context.Context, run func(root *cmd.CompositionRoot) error) error {
	db, err := gorm.Open(gorm_postgres.Open(a.cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		defer sqlDB.Close()
	}

	root, err := cmd.NewCompositionRoot(ctx, a.cfg, db, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if cErr := root.Close(); cErr != nil {
			a.logger.WarnContext(ctx, "Failed to close adapters", "error", cErr)
		}
	}()
	return run(root)
}

func (a *app) serve(parent context.Context, migrateOnStart bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{ServiceName: serviceName, Endpoint: a.cfg.OtelEndpoint})
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.WithoutCancel(ctx)) }()

	return a.withRoot(ctx, func(root *cmd.CompositionRoot) error {
		if migrateOnStart {
			if err := root.Migrate(ctx); err != nil {
				return err
			}
		}

		jobManager := root.CreateJobManager()
		if err := jobManager.StartAll(); err != nil {
			return err
		}
		defer jobManager.StopAll()

		e := newEcho(a.logger)
		root.CreateHTTPServer().Register(e, root.MetricsHandler())

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			a.logger.InfoContext(gctx, "HTTP server listening", "port", a.cfg.HTTPPort)
			if err := e.Start(fmt.Sprintf("0.0.0.0:%s", a.cfg.HTTPPort)); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})
		return g.Wait()
	})
}

func newEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	return e
}
