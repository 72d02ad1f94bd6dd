// marketwatch runs the measure pipeline once: it computes every profiled
// measure, exports the aligned value and score frames, and renders the
// categorized report as CSV, HTML and XLSX.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	_ "github.com/go-sql-driver/mysql"

	"twmw/internal/config"
	"twmw/internal/exporter"
	"twmw/internal/infrastructure"
	"twmw/internal/measure"
	"twmw/internal/render"
	"twmw/internal/services"
	"twmw/internal/source"
)

func main() {
	profilePath := flag.String("profile", "", "measure profile JSON (defaults to <data_dir>/measure_profile.json)")
	outDir := flag.String("out", "", "report output directory (defaults to configured reports dir)")
	freq := flag.String("freq", "", "reporting frequency override: D, W, M, Q or Y")
	periods := flag.Int("periods", 0, "number of trailing periods to report (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *freq != "" {
		cfg.Report.Frequency = *freq
	}
	if *periods > 0 {
		cfg.Report.DisplayPeriods = *periods
	}
	if *profilePath == "" {
		*profilePath = filepath.Join(cfg.Paths.DataDir, "measure_profile.json")
	}
	if *outDir == "" {
		*outDir = cfg.Paths.ReportsDir
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	if err := run(cfg, logger, *profilePath, *outDir); err != nil {
		logger.Error("Pipeline run failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, profilePath, outDir string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.WithRunID(ctx, uuid.NewString())

	profile, err := measure.LoadProfile(profilePath)
	if err != nil {
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return fmt.Errorf("measure profile not found at %s, create one before running", profilePath)
		}
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

	rep, values, scores, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	exp := exporter.New(cfg.Export)
	valuePath := filepath.Join(cfg.Paths.DataDir, "measure_value.csv")
	scorePath := filepath.Join(cfg.Paths.DataDir, "measure_score.csv")
	if err := exp.WriteFrameFile(valuePath, values); err != nil {
		return err
	}
	if err := exp.WriteFrameFile(scorePath, scores); err != nil {
		return err
	}
	logger.Info("exported frames",
		slog.String("values", valuePath),
		slog.String("scores", scorePath))

	opts := renderOptions(cfg)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}

	csvPath := filepath.Join(outDir, "report.csv")
	f, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", csvPath, err)
	}
	if err := render.RenderCSV(f, rep, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	htmlPath := filepath.Join(outDir, "report.html")
	f, err = os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", htmlPath, err)
	}
	if err := render.RenderHTML(f, rep, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	xlsxPath := filepath.Join(outDir, "report.xlsx")
	if err := render.RenderXLSX(xlsxPath, rep, opts); err != nil {
		return err
	}

	logger.Info("report written",
		slog.String("csv", csvPath),
		slog.String("html", htmlPath),
		slog.String("xlsx", xlsxPath),
		slog.Int("rows", len(rep.Rows)))
	return nil
}

// renderOptions is the shared report presentation: display labels for the
// fixed columns and merged category and total cells.
func renderOptions(cfg *config.Config) render.Options {
	return render.Options{
		Rename: map[string]string{
			render.FieldCategory:    "類別",
			render.FieldMeasureName: "指標",
			render.FieldUnit:        "單位",
			render.FieldScore:       "分數",
			render.FieldScoreTotal:  "分數合計",
		},
		MergeColumns: []string{render.FieldCategory, render.FieldScoreTotal},
		BOM:          cfg.Export.BOM,
	}
}
