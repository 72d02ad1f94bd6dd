// reportd serves the measure report over HTTP. It computes the report
// lazily on first request and keeps it until a refresh is requested.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"twmw/internal/config"
	"twmw/internal/infrastructure"
	"twmw/internal/measure"
	"twmw/internal/render"
	"twmw/internal/services"
	"twmw/internal/source"
	transport "twmw/internal/transport/http"
)

const version = "1.2.0"

func main() {
	profilePath := flag.String("profile", "", "measure profile JSON (defaults to <data_dir>/measure_profile.json)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *profilePath == "" {
		*profilePath = filepath.Join(cfg.Paths.DataDir, "measure_profile.json")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger, *profilePath); err != nil {
		logger.Error("Server failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, profilePath string) error {
	profile, err := measure.LoadProfile(profilePath)
	if err != nil {
		return fmt.Errorf("failed to load measure profile: %w", err)
	}

	api := source.NewClient(cfg.API, logger)

	var db *source.DB
	if cfg.DB.User != "" && cfg.DB.Schema != "" {
		conn, err := sql.Open("mysql", cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer conn.Close()
		db = source.NewDB(conn, logger)
	} else {
		logger.Warn("database not configured, database-backed measures will be skipped")
	}

	registry := measure.NewRegistry()
	if err := measure.NewComputers(api, db).Install(registry); err != nil {
		return fmt.Errorf("failed to install computers: %w", err)
	}
	if err := registry.Bind(profile); err != nil {
		return fmt.Errorf("failed to bind profile: %w", err)
	}

	cache := measure.NewCache()
	engine := measure.NewEngine(registry, logger,
		measure.WithWorkers(4),
		measure.WithCache(cache))

	svc, err := services.NewReportService(engine, cache, profile, cfg.Report, logger)
	if err != nil {
		return err
	}

	opts := render.Options{
		Rename: map[string]string{
			render.FieldCategory:    "類別",
			render.FieldMeasureName: "指標",
			render.FieldUnit:        "單位",
			render.FieldScore:       "分數",
			render.FieldScoreTotal:  "分數合計",
		},
		MergeColumns: []string{render.FieldCategory, render.FieldScoreTotal},
	}

	router := transport.NewRouter(
		transport.NewReportHandler(svc, logger, opts),
		transport.NewHealthHandler(version),
		logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("report server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down report server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
