package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/vms003/vatsal-medical/internal/config"
	"github.com/vms003/vatsal-medical/internal/database"
	"github.com/vms003/vatsal-medical/internal/events"
	"github.com/vms003/vatsal-medical/internal/logging"
	"github.com/vms003/vatsal-medical/internal/server"
	"github.com/vms003/vatsal-medical/internal/storage"
	"github.com/vms003/vatsal-medical/internal/store"
	"github.com/vms003/vatsal-medical/internal/store/gormstore"
	"github.com/vms003/vatsal-medical/internal/store/jsonstore"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "Medication reminder API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(importCmd())

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			st, err := openRelational(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(); err != nil {
				return err
			}
			slog.Info("migration completed", "driver", cfg.StoreDriver)
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy a JSON document store into the relational store",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, _ := cmd.Flags().GetString("from")
			doc, err := jsonstore.ReadDocument(from)
			if err != nil {
				return err
			}

			cfg := config.Load()
			dst, err := openRelational(cfg)
			if err != nil {
				return err
			}
			defer dst.Close()
			if err := dst.Migrate(); err != nil {
				return err
			}

			stats, err := jsonstore.Import(cmd.Context(), doc, dst)
			if err != nil {
				return err
			}
			slog.Info("import completed",
				"users", stats.Users,
				"medicines", stats.Medicines,
				"doctors", stats.Doctors,
				"prescriptions", stats.Prescriptions,
				"skipped_users", stats.Skipped,
			)
			return nil
		},
	}
	cmd.Flags().String("from", "data/store.json", "Path to the JSON document store")
	return cmd
}

func runServer() error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := context.Background()

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Record store
	st, db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Database log handler (ERROR+ async batch) and retention cleanup
	cleanupDone := make(chan struct{})
	var dbLogHandler *logging.DBHandler
	if db != nil {
		dbLogHandler = logging.NewDBHandler(db)
		slog.SetDefault(slog.New(logging.NewMultiHandler(
			logging.NewStdoutHandler(),
			dbLogHandler,
		)))
		logging.StartCleanup(db, cfg.LogRetentionDays, cleanupDone)
	}

	files, err := openFileStore(ctx, cfg)
	if err != nil {
		return err
	}

	publisher, err := openPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	app := server.New(cfg, st, files, publisher)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}
	slog.Info("shutting down server...")

	close(cleanupDone)
	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if dbLogHandler != nil {
		dbLogHandler.Stop()
	}

	slog.Info("server stopped")
	return nil
}

// openStore returns the configured record store. db is nil for the JSON store.
func openStore(cfg *config.Config) (store.Store, *gorm.DB, error) {
	if !cfg.Relational() {
		st, err := jsonstore.Open(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("document store ready", "path", st.Path())
		return st, nil, nil
	}

	st, err := openRelational(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(); err != nil {
		st.Close()
		return nil, nil, err
	}
	return st, st.DB(), nil
}

func openRelational(cfg *config.Config) (*gormstore.Store, error) {
	if !cfg.Relational() {
		return nil, fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", config.DriverPostgres, config.DriverMySQL, cfg.StoreDriver)
	}
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	return gormstore.New(db), nil
}

func openFileStore(ctx context.Context, cfg *config.Config) (storage.FileStore, error) {
	if cfg.UploadS3Bucket != "" {
		s3Store, err := storage.NewS3Store(ctx, cfg.UploadS3Bucket, cfg.UploadS3Prefix)
		if err != nil {
			return nil, err
		}
		slog.Info("uploads stored in S3", "bucket", cfg.UploadS3Bucket, "prefix", cfg.UploadS3Prefix)
		return s3Store, nil
	}

	disk, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	slog.Info("uploads stored on disk", "dir", disk.Dir())
	return disk, nil
}

func openPublisher(ctx context.Context, cfg *config.Config) (events.Publisher, error) {
	switch cfg.EventsDriver {
	case config.EventsKafka:
		slog.Info("publishing events to kafka", "topic", cfg.KafkaTopic)
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case config.EventsSQS:
		slog.Info("publishing events to sqs", "queue", cfg.SQSQueueURL)
		return events.NewSQSPublisher(ctx, cfg.SQSQueueURL)
	default:
		return events.NopPublisher{}, nil
	}
}
