package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/callfabric/callstats/export-go/internal/adapters/clickhousehttp"
	"github.com/callfabric/callstats/export-go/internal/clickhouse"
	"github.com/callfabric/callstats/export-go/internal/config"
	"github.com/callfabric/callstats/export-go/internal/exitcode"
	"github.com/callfabric/callstats/export-go/internal/export"
	"github.com/callfabric/callstats/export-go/internal/model"
	"github.com/callfabric/callstats/export-go/internal/storage"
)

func main() {
	// Configure the global logger
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))

	// Parse CLI flags
	dateStr := flag.String("date", "", "Report date override (YYYY-MM-DD); default is yesterday")
	noUpload := flag.Bool("no-upload", false, "Only query ClickHouse and write local CSV, do not upload")
	runID := flag.String("run-id", "", "Run identifier (UUIDv7 from orchestration), used for log correlation")
	flag.Parse()

	// Ensure run-id parses as UUIDv7 early
	if *runID != "" {
		if err := model.RunID(*runID).Validate(); err != nil {
			slog.Error("invalid run-id", "error", err)
			fmt.Fprintf(os.Stderr, "Usage: run-id must be a UUIDv7\n")
			os.Exit(exitcode.ConfigError)
		}
	}

	// Ensure environment variables are loaded
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load env vars", "error", err)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(exitcode.ConfigError)
	}
	if !*noUpload {
		if err := cfg.ValidateStorage(); err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(exitcode.ConfigError)
		}
	}

	override := *dateStr
	if override == "" {
		override = cfg.ExportDate
	}
	date, err := export.ResolveReportDate(override, cfg.ClickHouseTZ, time.Now())
	if err != nil {
		slog.Error("invalid report date", "error", err)
		os.Exit(exitcode.ConfigError)
	}
	tzLabel := cfg.ClickHouseTZ
	if tzLabel == "" {
		tzLabel = "<server/session>"
	}
	slog.Info("report date resolved", "date", date.Format("2006-01-02"), "tz", tzLabel)

	// Create a cancellable context (for graceful shutdown)
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runner := clickhousehttp.NewClient(cfg.ClickHouseURL, cfg.ClickHouseUser, cfg.ClickHousePassword, cfg.ClickHouseDatabase)

	probe, err := clickhouse.NewProbe(clickhouse.Config{
		URL:      cfg.ClickHouseURL,
		User:     cfg.ClickHouseUser,
		Password: cfg.ClickHousePassword,
		Database: cfg.ClickHouseDatabase,
	})
	if err != nil {
		slog.Error("failed to initialize clickhouse probe", "error", err)
		os.Exit(exitcode.ConfigError)
	}
	defer probe.Close()

	// Initialize MinIO client unless the upload is disabled
	var store export.ObjectStorage
	if !*noUpload {
		minioClient, err := storage.NewMinIOClient(ctx, storage.MinIOConfig{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
		})
		if err != nil {
			slog.Error("failed to initialize minio client", "error", err)
			os.Exit(exitcode.ConfigError)
		}
		store = minioClient
	}

	svc := export.NewService(probe, runner, store, cfg.ExportDir, cfg.MinIOKeyPrefix)

	req := export.Request{Date: date, TZ: cfg.ClickHouseTZ}

	if err := svc.Export(ctx, req, model.RunID(*runID)); err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(exitCodeFor(err))
	}

	slog.Info("shutdown complete")
}

// exitCodeFor maps export failures to scheduler-facing exit codes.
func exitCodeFor(err error) int {
	var storeErr *export.StoreError
	switch {
	case errors.Is(err, export.ErrNoRows):
		return exitcode.DataError
	case errors.As(err, &storeErr):
		return exitcode.StorageError
	default:
		return exitcode.QueryError
	}
}
