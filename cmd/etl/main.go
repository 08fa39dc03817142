// Command etl cleans one CSV file (or, with -all, every CSV file of the raw
// data directory) according to a YAML configuration and prints a summary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"logisticsetl/internal/config"
	"logisticsetl/internal/logging"
	"logisticsetl/internal/metrics"
	"logisticsetl/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code. Deferred
// metric flushes and log syncs complete before it returns.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("etl", flag.ContinueOnError)
	fset.SetOutput(stderr)
	var (
		input      string
		output     string
		cfgPath    string
		envPath    string
		backendFlg string
		validate   bool
		all        bool
	)
	fset.StringVar(&input, "i", "", "input CSV filename (relative to data_sources.raw_data_path)")
	fset.StringVar(&output, "o", "", "output CSV filename (relative to data_sources.cleaned_data_path)")
	fset.StringVar(&cfgPath, "c", "configs/pipeline_config.yaml", "path to the YAML config")
	fset.StringVar(&envPath, "env", ".env", "optional dotenv file with METRICS_BACKEND, PUSHGATEWAY_URL, ...")
	fset.StringVar(&backendFlg, "metrics-backend", "", "metrics backend (none, pushgateway, datadog); overrides config and env")
	fset.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	fset.BoolVar(&all, "all", false, "clean every *.csv file of raw_data_path")
	verbose := fset.Bool("v", false, "enable debug logs")
	if err := fset.Parse(args); err != nil {
		return 2
	}

	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stderr, "load %s: %v\n", envPath, err)
		return 1
	}
	if backendFlg != "" {
		if err := os.Setenv(config.EnvMetricsBackend, backendFlg); err != nil {
			fmt.Fprintf(stderr, "set %s: %v\n", config.EnvMetricsBackend, err)
			return 1
		}
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	for _, iss := range config.Validate(cfg) {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if validate {
		fmt.Fprintf(stdout, "Configuration is valid: %s\n", cfgPath)
		return 0
	}
	if !all && (input == "" || output == "") {
		fmt.Fprintln(stderr, "both -i and -o are required unless -all is set")
		return 2
	}

	level := cfg.Logging.Level
	if *verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer log.Sync()

	backend, err := newMetricsBackend(cfg.Job, cfg.Metrics)
	if err != nil {
		log.Warn("metrics: backend unavailable, metrics disabled", zap.Error(err))
		backend = metrics.Nop{}
	}
	rec := metrics.NewRecorder(backend, cfg.Job)
	defer func() {
		if err := rec.Flush(); err != nil {
			log.Warn("metrics: flush failed", zap.Error(err))
		}
	}()

	p, err := pipeline.New(cfg, log, rec)
	if err != nil {
		log.Error("pipeline: invalid configuration", zap.Error(err))
		return 1
	}

	if all {
		b, err := p.RunAll(ctx)
		if err != nil {
			log.Error("pipeline: batch failed", zap.Error(err))
			return 1
		}
		printBatch(stdout, b)
		if len(b.Failed()) > 0 {
			return 1
		}
		return 0
	}

	t, err := p.Run(ctx, input, output)
	if err != nil {
		log.Error("pipeline: run failed", zap.Error(err))
		return 1
	}
	printSummary(stdout, pipeline.Summarize(t))
	return 0
}

func printSummary(w io.Writer, s pipeline.Summary) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "\n%s\nPipeline Summary\n%s\n", rule, rule)
	fmt.Fprintf(w, "Total Rows: %d\n", s.Rows)
	fmt.Fprintf(w, "Total Columns: %d\n", s.Columns)
	fmt.Fprintf(w, "Columns: %s\n", strings.Join(s.ColumnNames, ", "))
	fmt.Fprintln(w, "\nMissing Values:")
	missing := s.MissingColumns()
	if len(missing) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, name := range missing {
		fmt.Fprintf(w, "  %s: %d\n", name, s.Missing[name])
	}
	if cols := s.StatisticsColumns(); len(cols) > 0 {
		fmt.Fprintf(w, "\n%-16s %8s %12s %12s %12s %12s %12s %12s %12s\n",
			"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
		for _, name := range cols {
			st := s.Statistics[name]
			fmt.Fprintf(w, "%-16s %8d %12.4g %12.4g %12.4g %12.4g %12.4g %12.4g %12.4g\n",
				name, st.Count, st.Mean, st.Std, st.Min, st.Q25, st.Q50, st.Q75, st.Max)
		}
	}
}

func printBatch(w io.Writer, b pipeline.Batch) {
	for _, f := range b.Files {
		if f.Err != nil {
			fmt.Fprintf(w, "FAIL %s: %v\n", f.Input, f.Err)
			continue
		}
		fmt.Fprintf(w, "ok   %s -> %s (%d rows)\n", f.Input, f.Output, f.Rows)
	}
	fmt.Fprintf(w, "%d files, %d failed\n", len(b.Files), len(b.Failed()))
}
