package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	apperrors "tvaudience/internal/errors"
	"tvaudience/internal/exporter"
	"tvaudience/internal/features"
	"tvaudience/internal/frame"
	"tvaudience/internal/importer"
	"tvaudience/internal/infrastructure"
	"tvaudience/internal/reference"
	"tvaudience/internal/store"
	"tvaudience/pkg/contracts/domain"
)

// Output table names
const (
	DailyModelTable = "daily_model"
)

// Options selects what a run produces
type Options struct {
	Tables        []domain.TableType
	Localize      bool
	Hour          bool
	ModelFeatures bool
	YearBase      int
	Glossary      bool
	Workers       int
}

// Dependencies are the collaborators a Runner drives. Store, Tracer and
// Metrics are optional.
type Dependencies struct {
	Importer *importer.Importer
	Holidays *reference.Holidays
	Exporter *exporter.TableExporter
	Store    *store.SQLiteStore
	Tracer   trace.Tracer
	Metrics  *infrastructure.PipelineMetrics
	Logger   *slog.Logger
}

// Runner executes the stages of a run
type Runner struct {
	deps Dependencies
	opts Options
}

// stageOutput is what a stage hands back to the runner
type stageOutput struct {
	rows     int
	features []string
	files    []string
}

// NewRunner creates a runner
func NewRunner(deps Dependencies, opts Options) *Runner {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = infrastructure.WithComponent(deps.Logger, "pipeline")
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider().Tracer("tvaudience")
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.YearBase == 0 {
		opts.YearBase = features.DefaultYearBase
	}
	return &Runner{deps: deps, opts: opts}
}

// Run executes every selected stage and returns the run report. The report
// is returned even when the run fails; stages cancelled by an earlier
// failure are reported as failed.
func (r *Runner) Run(ctx context.Context) (*domain.RunReport, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	report := &domain.RunReport{
		RunID:     infrastructure.GetRunID(ctx),
		StartedAt: time.Now(),
	}

	tables := append([]domain.TableType{}, r.opts.Tables...)
	if r.opts.Glossary {
		tables = append(tables, domain.TableGlossary)
	}
	if len(tables) == 0 {
		return report, apperrors.NewAppValidationError("no tables selected")
	}

	ctx, span := r.deps.Tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", report.RunID),
			attribute.Int("run.workers", r.opts.Workers),
		),
	)
	defer span.End()

	r.deps.Logger.InfoContext(ctx, "Starting run",
		slog.Int("stages", len(tables)),
		slog.Int("workers", r.opts.Workers),
		slog.Bool("localize", r.opts.Localize))

	results := make([]domain.StageResult, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, table := range tables {
		i, table := i, table
		g.Go(func() error {
			res, err := r.runStage(gctx, table)
			results[i] = res
			return err
		})
	}
	err := g.Wait()

	report.Stages = results
	report.FinishedAt = time.Now()

	if err != nil {
		infrastructure.RecordError(ctx, err)
		r.deps.Logger.ErrorContext(ctx, "Run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
		return report, err
	}

	r.deps.Logger.InfoContext(ctx, "Run completed",
		slog.Int("rows", report.TotalRows()),
		slog.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))
	return report, nil
}

func (r *Runner) runStage(ctx context.Context, table domain.TableType) (domain.StageResult, error) {
	ctx, span := r.deps.Tracer.Start(ctx, fmt.Sprintf("pipeline.stage.%s", table),
		trace.WithAttributes(attribute.String("stage.table", string(table))))
	defer span.End()

	logger := r.deps.Logger.With(slog.String("table", string(table)))
	logger.DebugContext(ctx, "Stage started")

	start := time.Now()
	var (
		out stageOutput
		err error
	)
	if err = ctx.Err(); err == nil {
		switch table {
		case domain.TableMonthly:
			out, err = r.monthly(ctx)
		case domain.TableDaily:
			out, err = r.daily(ctx)
		case domain.TableProg:
			out, err = r.prog(ctx)
		case domain.TableGlossary:
			out, err = r.glossary()
		default:
			err = apperrors.NewAppValidationError(fmt.Sprintf("unknown table %q", table))
		}
	}
	duration := time.Since(start)

	infrastructure.RecordStage(ctx, r.deps.Metrics, string(table), out.rows, len(out.files), duration, err)

	result := domain.StageResult{
		Table:    table,
		Status:   domain.StageStatusCompleted,
		Rows:     out.rows,
		Features: out.features,
		Files:    out.files,
		Duration: duration,
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		result.Status = domain.StageStatusFailed
		result.Error = err.Error()
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Stage failed",
			slog.Duration("duration", duration))
		return result, fmt.Errorf("%s stage: %w", table, err)
	}

	span.SetAttributes(attribute.Int("stage.rows", out.rows))
	logger.InfoContext(ctx, "Stage completed",
		slog.Int("rows", out.rows),
		slog.Any("files", out.files),
		slog.Duration("duration", duration))
	return result, nil
}

func (r *Runner) monthly(ctx context.Context) (stageOutput, error) {
	f, err := r.deps.Importer.Monthly(ctx)
	if err != nil {
		return stageOutput{}, err
	}
	return r.publish(ctx, string(domain.TableMonthly), f, nil)
}

func (r *Runner) prog(ctx context.Context) (stageOutput, error) {
	f, err := r.deps.Importer.Prog(ctx)
	if err != nil {
		return stageOutput{}, err
	}
	return r.publish(ctx, string(domain.TableProg), f, nil)
}

// daily imports the daily table, adds the date features and, when enabled,
// writes the model feature table next to it
func (r *Runner) daily(ctx context.Context) (stageOutput, error) {
	f, err := r.deps.Importer.Daily(ctx, r.opts.Localize)
	if err != nil {
		return stageOutput{}, err
	}

	enriched, names, err := features.DateFeatures(f, r.deps.Holidays, features.Options{Hour: r.opts.Hour})
	if err != nil {
		return stageOutput{}, err
	}
	out, err := r.publish(ctx, string(domain.TableDaily), enriched, names)
	if err != nil {
		return out, err
	}

	if !r.opts.ModelFeatures {
		return out, nil
	}
	model, _, err := features.CreateFeatures(f, r.opts.YearBase)
	if err != nil {
		return out, err
	}
	extra, err := r.publish(ctx, DailyModelTable, model, nil)
	if err != nil {
		return out, err
	}
	out.files = append(out.files, extra.files...)
	return out, nil
}

func (r *Runner) glossary() (stageOutput, error) {
	path, err := r.deps.Exporter.ExportGlossary()
	if err != nil {
		return stageOutput{}, err
	}
	return stageOutput{rows: len(domain.MetricCodes()), files: []string{path}}, nil
}

// publish writes f as name.csv and into the SQLite store when one is set
func (r *Runner) publish(ctx context.Context, name string, f *frame.Frame, names []string) (stageOutput, error) {
	path, err := r.deps.Exporter.Export(f, name)
	if err != nil {
		return stageOutput{}, err
	}
	if r.deps.Store != nil {
		if err := r.deps.Store.SaveTable(ctx, name, f); err != nil {
			return stageOutput{}, err
		}
	}
	return stageOutput{rows: f.Len(), features: names, files: []string{path}}, nil
}
