// Package pipeline runs the load, validate, clean, re-validate and write
// stages over one input file, or over every CSV file of the raw data
// directory.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"logisticsetl/internal/cleaner"
	"logisticsetl/internal/config"
	"logisticsetl/internal/datasource/file"
	"logisticsetl/internal/ingest"
	"logisticsetl/internal/metrics"
	pcsv "logisticsetl/internal/parser/csv"
	"logisticsetl/internal/stats"
	"logisticsetl/internal/table"
	"logisticsetl/internal/transformer"
	"logisticsetl/internal/validator"
)

// Stage names, used in logs and as the metrics "step" label.
const (
	StageLoad       = "load"
	StageValidate   = "validate"
	StageClean      = "clean"
	StageRevalidate = "revalidate"
	StageWrite      = "write"
)

// Pipeline holds the components of a run. It is not safe for concurrent use.
type Pipeline struct {
	cfg       config.Config
	log       *zap.Logger
	loader    *ingest.Loader
	cleaner   *cleaner.Cleaner
	validator *validator.Validator
	metrics   *metrics.Recorder
}

// New builds a Pipeline. cfg is linted again here, so a Config assembled in
// code gets the same checks as one read by config.Load. A nil logger or
// recorder disables logging or metrics.
func New(cfg config.Config, log *zap.Logger, rec *metrics.Recorder) (*Pipeline, error) {
	if errs := config.Errors(config.Validate(cfg)); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", config.ErrConfiguration, errs)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if rec == nil {
		rec = metrics.NewRecorder(nil, cfg.Job)
	}
	loader := ingest.NewLoader(cfg.DataSources.RawDataPath, cfg.DataSources.ParseOptions(), log)
	loader.OnSkipped(func(_ string, n int) { rec.RecordRows("skipped", n) })
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		loader:    loader,
		cleaner:   cleaner.New(log),
		validator: validator.New(cfg.ValidationRules.RequiredColumns, log),
		metrics:   rec,
	}, nil
}

// Run processes input (relative to raw_data_path unless absolute) and writes
// the result to output under cleaned_data_path. The first failing stage
// stops the run; validation findings are logged but never fail it.
func (p *Pipeline) Run(ctx context.Context, input, output string) (*table.Table, error) {
	log := p.log.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("job", p.cfg.Job),
		zap.String("input", input),
	)
	log.Info("pipeline: starting")
	start := time.Now()

	var t *table.Table
	err := p.stage(ctx, log, StageLoad, func() error {
		var err error
		t, err = p.loader.Load(ctx, input)
		if err != nil {
			return err
		}
		p.metrics.RecordRows("loaded", t.NumRows())
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, StageValidate, func() error {
		p.validate(log, t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, StageClean, func() error {
		t = p.cleanChain().Apply(t)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(ctx, log, StageRevalidate, func() error {
		q := p.validator.CheckQuality(t)
		log.Info("pipeline: final data quality",
			zap.Int("rows", q.TotalRows),
			zap.Int("columns", q.TotalColumns),
			zap.Float64("missing_pct", q.MissingPercentage),
		)
		if ranges := p.cfg.ValidationRules.ValueRanges; len(ranges) > 0 {
			p.validator.ValidateRanges(t, ranges)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	outPath := filepath.Join(p.cfg.DataSources.CleanedDataPath, output)
	err = p.stage(ctx, log, StageWrite, func() error {
		if err := p.write(ctx, outPath, t); err != nil {
			return err
		}
		p.metrics.RecordRows("written", t.NumRows())
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("pipeline: completed",
		zap.String("output", outPath),
		zap.Int("rows", t.NumRows()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return t, nil
}

// stage runs fn as one named, timed step. A done context fails the step
// before fn runs.
func (p *Pipeline) stage(ctx context.Context, log *zap.Logger, name string, fn func() error) error {
	start := time.Now()
	err := ctx.Err()
	if err == nil {
		log.Info("pipeline: stage " + name)
		err = fn()
	}
	p.metrics.RecordStep(name, err, time.Since(start))
	if err != nil {
		log.Error("pipeline: stage failed", zap.String("stage", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (p *Pipeline) validate(log *zap.Logger, t *table.Table) {
	p.validator.ValidateSchema(t)
	q := p.validator.CheckQuality(t)
	log.Info("pipeline: data quality", zap.Float64("missing_pct", q.MissingPercentage))
	if types := p.cfg.ValidationRules.DataTypes; len(types) > 0 {
		p.validator.ValidateTypes(t, types)
	}
}

// cleanChain builds the cleaning steps the rules enable, in order:
// duplicates, missing values, text, types, outliers.
func (p *Pipeline) cleanChain() transformer.Chain {
	rules := p.cfg.CleaningRules
	var chain transformer.Chain
	if rules.RemoveDuplicates {
		chain = append(chain, p.counted("duplicates_removed", func(t *table.Table) *table.Table {
			return p.cleaner.DedupeKeep(t, rules.DuplicateKeep, rules.DuplicateSubset...)
		}))
	}
	if rules.HandleMissingValues {
		chain = append(chain, p.counted("missing_dropped", func(t *table.Table) *table.Table {
			return p.cleaner.HandleMissing(t, rules.MissingValueStrategy, rules.FillValues)
		}))
	}
	if len(rules.StandardizeText) > 0 {
		chain = append(chain, transformer.Func(func(t *table.Table) *table.Table {
			return p.cleaner.StandardizeText(t, rules.StandardizeText)
		}))
	}
	if len(p.cfg.ValidationRules.DataTypes) > 0 {
		chain = append(chain, transformer.Func(func(t *table.Table) *table.Table {
			conv := numericTypes(t, p.cfg.ValidationRules.DataTypes)
			if len(conv) == 0 {
				return t
			}
			return p.cleaner.ConvertTypes(t, conv)
		}))
	}
	for _, o := range rules.Outliers {
		chain = append(chain, p.counted("outliers_removed", func(t *table.Table) *table.Table {
			return p.cleaner.RemoveOutliers(t, o.Column, o.Method, o.Threshold)
		}))
	}
	return chain
}

// counted wraps fn so the rows it drops are recorded under kind.
func (p *Pipeline) counted(kind string, fn func(*table.Table) *table.Table) transformer.Func {
	return func(t *table.Table) *table.Table {
		out := fn(t)
		p.metrics.RecordRows(kind, t.NumRows()-out.NumRows())
		return out
	}
}

// numericTypes keeps the integer and float entries of types whose column
// exists in t; only those are converted during cleaning.
func numericTypes(t *table.Table, types map[string]string) map[string]string {
	out := make(map[string]string, len(types))
	for col, name := range types {
		typ, ok := table.LookupType(name)
		if ok && typ.Numeric() && t.Has(col) {
			out[col] = string(typ)
		}
	}
	return out
}

func (p *Pipeline) write(ctx context.Context, path string, t *table.Table) (err error) {
	w, err := file.NewLocal(path).Create(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return pcsv.Write(w, t, p.cfg.DataSources.Comma())
}

// FileResult is the outcome of one file of a batch run.
type FileResult struct {
	Input  string
	Output string
	Rows   int
	Err    error
}

// Batch is the outcome of RunAll.
type Batch struct {
	Files []FileResult
}

// Failed returns the results that carry an error.
func (b Batch) Failed() []FileResult {
	var out []FileResult
	for _, f := range b.Files {
		if f.Err != nil {
			out = append(out, f)
		}
	}
	return out
}

// RunAll runs every *.csv file of raw_data_path, writing each to the same
// name under cleaned_data_path. A failing file is logged and recorded in the
// batch; the remaining files still run. Listing the directory or a done
// context ends the batch with an error.
func (p *Pipeline) RunAll(ctx context.Context) (Batch, error) {
	names, err := file.ListCSV(p.cfg.DataSources.RawDataPath)
	if err != nil {
		return Batch{}, err
	}
	p.log.Info("pipeline: batch starting", zap.Int("files", len(names)))

	var b Batch
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		res := FileResult{Input: name, Output: name}
		t, err := p.Run(ctx, name, name)
		if err != nil {
			res.Err = err
			p.log.Warn("pipeline: file failed", zap.String("input", name), zap.Error(err))
		} else {
			res.Rows = t.NumRows()
		}
		p.metrics.RecordFile(err)
		b.Files = append(b.Files, res)
	}
	p.log.Info("pipeline: batch completed",
		zap.Int("files", len(b.Files)),
		zap.Int("failed", len(b.Failed())),
	)
	return b, nil
}

// Summary describes a result table.
type Summary struct {
	Rows        int
	Columns     int
	ColumnNames []string
	Types       map[string]table.Type
	Missing     map[string]int
	Statistics  map[string]stats.Summary
}

// Summarize computes the Summary of t. Statistics cover numeric columns.
func Summarize(t *table.Table) Summary {
	s := Summary{
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		ColumnNames: t.Names(),
		Types:       make(map[string]table.Type, t.NumCols()),
		Missing:     make(map[string]int, t.NumCols()),
		Statistics:  make(map[string]stats.Summary),
	}
	for _, c := range t.Columns() {
		s.Types[c.Name] = c.Type
		s.Missing[c.Name] = c.Missing()
		if c.Type.Numeric() {
			vals, _ := c.Floats()
			s.Statistics[c.Name] = stats.Describe(vals)
		}
	}
	return s
}

// MissingColumns returns the names of columns with missing cells, in table
// order.
func (s Summary) MissingColumns() []string {
	var out []string
	for _, name := range s.ColumnNames {
		if s.Missing[name] > 0 {
			out = append(out, name)
		}
	}
	return out
}

// StatisticsColumns returns the names with statistics, sorted.
func (s Summary) StatisticsColumns() []string {
	out := make([]string, 0, len(s.Statistics))
	for name := range s.Statistics {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
