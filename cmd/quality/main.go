// Command quality loads a raw CSV file and prints a data quality report:
// missing cells per column, duplicate rows and inferred column types.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"logisticsetl/internal/config"
	"logisticsetl/internal/ingest"
	"logisticsetl/internal/logging"
	"logisticsetl/internal/table"
	"logisticsetl/internal/validator"
)

var (
	flagFile    = flag.String("f", "", "CSV filename to inspect (relative to -d)")
	flagDir     = flag.String("d", "", "directory holding the file; defaults to data_sources.raw_data_path")
	flagConfig  = flag.String("c", "", "optional YAML config supplying delimiter, null values and required columns")
	flagHead    = flag.Int("head", 0, "only read the first n data rows (0 reads everything)")
	flagVerbose = flag.Bool("v", false, "enable debug logs")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	if *flagFile == "" {
		fatalf("-f is required")
	}

	cfg := config.Default()
	if *flagConfig != "" {
		var err error
		if cfg, err = config.Load(*flagConfig); err != nil {
			fatalf("%v", err)
		}
	}
	dir := cfg.DataSources.RawDataPath
	if *flagDir != "" {
		dir = *flagDir
	}

	level := "warn"
	if *flagVerbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		fatalf("%v", err)
	}
	defer log.Sync()

	loader := ingest.NewLoader(dir, cfg.DataSources.ParseOptions(), log)
	loader.OnSkipped(func(path string, n int) {
		fmt.Fprintf(os.Stderr, "%s: %d unreadable rows skipped\n", path, n)
	})

	ctx := context.Background()
	var t *table.Table
	if *flagHead > 0 {
		t, err = loader.Sample(ctx, *flagFile, *flagHead)
	} else {
		t, err = loader.Load(ctx, *flagFile)
	}
	if err != nil {
		log.Error("quality: load failed", zap.Error(err))
		return 1
	}

	v := validator.New(cfg.ValidationRules.RequiredColumns, log)
	printReport(os.Stdout, *flagFile, ingest.Describe(t), v.ValidateSchema(t), v.CheckQuality(t))
	return 0
}

func printReport(w io.Writer, name string, info ingest.Info, schema validator.SchemaResult, q validator.QualityReport) {
	rule := strings.Repeat("=", 50)
	fmt.Fprintf(w, "%s\nQuality Report: %s\n%s\n", rule, name, rule)
	fmt.Fprintf(w, "Rows: %d\nColumns: %d\nCells: %d\n", q.TotalRows, q.TotalColumns, q.TotalCells)
	fmt.Fprintf(w, "Missing cells: %d (%.2f%%)\n", q.MissingCells, q.MissingPercentage)
	fmt.Fprintf(w, "Duplicate rows: %d\n", q.DuplicateRows)
	fmt.Fprintf(w, "Approx. memory: %d bytes\n", info.MemoryBytes)

	if len(schema.MissingColumns) > 0 {
		fmt.Fprintf(w, "Missing required columns: %s\n", strings.Join(schema.MissingColumns, ", "))
	}
	if schema.HasAllNullColumns {
		fmt.Fprintf(w, "All-null columns: %s\n", strings.Join(schema.AllNullColumns, ", "))
	}

	fmt.Fprintf(w, "\n%-24s %-10s %8s %8s\n", "column", "type", "missing", "pct")
	for _, col := range info.Names {
		pct := 0.0
		if info.Rows > 0 {
			pct = float64(info.NullCounts[col]) / float64(info.Rows) * 100
		}
		fmt.Fprintf(w, "%-24s %-10s %8d %7.2f%%\n", col, info.Types[col], info.NullCounts[col], pct)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
