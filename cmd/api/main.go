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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/vet-scheduler/internal/db"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/infra/memory"
	infraRepo "github.com/BruksfildServices01/vet-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
	"github.com/BruksfildServices01/vet-scheduler/internal/receipts"
	"github.com/BruksfildServices01/vet-scheduler/internal/routes"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "vet-scheduler",
		Short: "Veterinary clinic scheduling API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create tables and the appointment exclusion constraint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			db, err := dbpkg.NewDB(cfg)
			if err != nil {
				return err
			}
			if err := dbpkg.Migrate(db); err != nil {
				return err
			}
			logger.Info().Msg("migrations applied")
			return nil
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.IsDev() {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "vet-scheduler").Logger()
}

// store devolve o runner transacional e o store de auditoria do driver configurado.
func store(cfg *config.Config, logger zerolog.Logger) (uow.Runner, audit.Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn().Msg("using in-memory storage; data is lost on restart")
		s := memory.New()
		return s, s, nil
	default:
		db, err := dbpkg.NewDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		s := infraRepo.NewGormStore(db)
		return s, s, nil
	}
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg)

	schedule, err := cfg.Schedule()
	if err != nil {
		return err
	}

	runner, auditStore, err := store(cfg, logger)
	if err != nil {
		return err
	}

	auditDispatcher := audit.NewDispatcher(audit.New(auditStore), logger, 500)
	defer auditDispatcher.Close()

	deps := routes.Dependencies{
		Config:     cfg,
		Schedule:   schedule,
		Runner:     runner,
		AuditStore: auditStore,
		Audit:      auditDispatcher,
		Registry:   prometheus.NewRegistry(),
		Log:        logger,
	}
	deps.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// ------------------------------
	// Notificações (Redis pub/sub)
	// ------------------------------
	if cfg.RedisURL != "" {
		client, err := notify.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		deps.Notify = notify.NewDispatcher(notify.NewRedisPublisher(client, cfg.NotifyChannel), logger, 200)
		defer deps.Notify.Close()
	}

	// ------------------------------
	// Pagamentos (Mercado Pago)
	// ------------------------------
	if cfg.MPAccessToken != "" {
		mp, err := payments.NewMercadoPago(cfg.MPAccessToken, cfg.MPNotificationURL, cfg.CurrencyID)
		if err != nil {
			return err
		}
		deps.Payments = mp
	}

	// ------------------------------
	// Comprovantes (S3)
	// ------------------------------
	if cfg.ReceiptsBucket != "" {
		client := receipts.NewS3Client(cfg.AWSRegion, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.S3Endpoint)
		deps.Receipts = receipts.NewArchiver(client, cfg.ReceiptsBucket, logger)
		defer deps.Receipts.Close()
	}

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, deps)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr()).
			Str("storage", cfg.StorageDriver).
			Str("timezone", schedule.Location().String()).
			Bool("payments", deps.Payments != nil).
			Bool("receipts", deps.Receipts != nil).
			Bool("notifications", deps.Notify != nil).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
