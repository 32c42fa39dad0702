// Command tvetl imports the vendor audience workbooks, adds calendar and
// holiday features to the daily table and writes every table as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"tvaudience/internal/config"
	"tvaudience/internal/exporter"
	"tvaudience/internal/frame"
	"tvaudience/internal/importer"
	"tvaudience/internal/infrastructure"
	"tvaudience/internal/pipeline"
	"tvaudience/internal/reference"
	"tvaudience/internal/store"
	"tvaudience/internal/validation"
	"tvaudience/pkg/contracts"
	"tvaudience/pkg/contracts/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "tvetl: %v\n", err)
		os.Exit(1)
	}
}

// options are the command-line overrides of the configuration
type options struct {
	configPath    string
	tables        string
	localize      bool
	hours         bool
	modelFeatures bool
	dataset       string
	out           string
	version       bool
	set           map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("tvetl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{set: make(map[string]bool)}
	fs.StringVar(&opts.configPath, "config", "", "path to tvaudience.yaml (defaults to the usual locations)")
	fs.StringVar(&opts.tables, "tables", "", "comma-separated tables to build: monthly,daily,prog")
	fs.BoolVar(&opts.localize, "localize", false, "interpret daily timestamps in the configured timezone")
	fs.BoolVar(&opts.hours, "hours", false, "add the hour feature to the daily table")
	fs.BoolVar(&opts.modelFeatures, "model-features", false, "also write daily_model.csv")
	fs.StringVar(&opts.dataset, "dataset", "", "dataset directory holding the workbooks")
	fs.StringVar(&opts.out, "out", "", "output directory for the CSV files")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// apply overrides cfg with the flags given on the command line
func (o *options) apply(cfg *config.Config) {
	if o.set["tables"] {
		cfg.Pipeline.Tables = strings.Split(o.tables, ",")
	}
	if o.set["localize"] {
		cfg.Daily.Localize = o.localize
	}
	if o.set["hours"] {
		cfg.Features.Hour = o.hours
	}
	if o.set["model-features"] {
		cfg.Features.ModelFeatures = o.modelFeatures
	}
	if o.set["dataset"] {
		cfg.Dataset.Dir = o.dataset
	}
	if o.set["out"] {
		cfg.Export.OutputDir = o.out
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.version {
		fmt.Fprintln(stderr, contracts.GetFullVersionString())
		return nil
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.EnsureRunID(ctx)
	logger.InfoContext(ctx, "Starting tvetl",
		slog.String("version", contracts.Version),
		slog.String("dataset_dir", cfg.Dataset.Dir),
		slog.String("output_dir", cfg.Export.OutputDir),
		slog.Any("tables", cfg.Pipeline.Tables))

	paths, err := cfg.Paths()
	if err != nil {
		return err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	tables, err := pipeline.ParseTables(cfg.Pipeline.Tables)
	if err != nil {
		return err
	}
	if err := pipeline.Preflight(validation.NewFileValidator(logger), paths, tables); err != nil {
		return err
	}

	tel, err := infrastructure.InitializeTelemetry(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	deps, cleanup, err := buildDependencies(ctx, cfg, paths, tables, tel, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	runner := pipeline.NewRunner(deps, pipeline.Options{
		Tables:        tables,
		Localize:      cfg.Daily.Localize,
		Hour:          cfg.Features.Hour,
		ModelFeatures: cfg.Features.ModelFeatures,
		YearBase:      cfg.Features.YearBase,
		Glossary:      cfg.Export.Glossary,
		Workers:       cfg.Pipeline.Workers,
	})

	report, runErr := runner.Run(ctx)
	logReport(ctx, logger, report)

	if err := tel.WriteMetrics(); err != nil {
		logger.WarnContext(ctx, "Failed to write metrics file", slog.String("error", err.Error()))
	}
	return runErr
}

// buildDependencies loads the reference tables and opens the sinks a run needs
func buildDependencies(ctx context.Context, cfg *config.Config, paths *config.Paths, tables []domain.TableType,
	tel *infrastructure.Telemetry, logger *slog.Logger) (pipeline.Dependencies, func(), error) {
	cleanup := func() {}

	slots, err := reference.NewHourSlots(cfg.Daily.SlotStep)
	if err != nil {
		return pipeline.Dependencies{}, cleanup, err
	}

	var holidays *reference.Holidays
	for _, t := range tables {
		if t == domain.TableDaily {
			if holidays, err = reference.LoadHolidays(paths.HolidaysFile); err != nil {
				return pipeline.Dependencies{}, cleanup, err
			}
			attrs := []any{slog.String("file", paths.HolidaysFile), slog.Int("dates", holidays.Len())}
			if dates := holidays.Dates(); len(dates) > 0 {
				attrs = append(attrs,
					slog.String("first", dates[0].Format(frame.DateLayout)),
					slog.String("last", dates[len(dates)-1].Format(frame.DateLayout)))
			}
			logger.InfoContext(ctx, "Loaded holiday table", attrs...)
		}
	}

	loc, err := time.LoadLocation(cfg.Daily.Timezone)
	if err != nil {
		return pipeline.Dependencies{}, cleanup, fmt.Errorf("failed to load timezone %s: %w", cfg.Daily.Timezone, err)
	}

	deps := pipeline.Dependencies{
		Importer: importer.New(importer.Files{
			Monthly: paths.MonthlyFile,
			Daily:   paths.DailyFile,
			Prog:    paths.ProgFile,
		}, slots, importer.Options{Location: loc, Frequency: cfg.Daily.Frequency}, logger),
		Holidays: holidays,
		Exporter: exporter.NewTableExporter(paths.OutputDir, cfg.Export.BOMPrefix, logger),
		Tracer:   tel.Tracer,
		Metrics:  tel.Metrics,
		Logger:   logger,
	}

	if paths.SQLiteFile != "" {
		db, err := store.Open(ctx, paths.SQLiteFile, logger)
		if err != nil {
			return pipeline.Dependencies{}, cleanup, err
		}
		deps.Store = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", slog.String("error", err.Error()))
			}
		}
	}

	return deps, cleanup, nil
}

func logReport(ctx context.Context, logger *slog.Logger, report *domain.RunReport) {
	if report == nil {
		return
	}
	for _, s := range report.Stages {
		logger.InfoContext(ctx, "Stage summary",
			slog.String("table", string(s.Table)),
			slog.String("status", string(s.Status)),
			slog.Int("rows", s.Rows),
			slog.Any("files", s.Files),
			slog.Duration("duration", s.Duration))
	}
	logger.InfoContext(ctx, "Run summary",
		slog.Int("rows", report.TotalRows()),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
}
