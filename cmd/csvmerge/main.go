// Command csvmerge concatenates CSV files that share (some of) their columns
// into one output file. Columns are unioned in first-seen order; files that
// fail to load are reported and skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"unicode/utf8"

	"go.uber.org/zap"

	"logisticsetl/internal/datasource"
	"logisticsetl/internal/datasource/file"
	"logisticsetl/internal/ingest"
	"logisticsetl/internal/logging"
	pcsv "logisticsetl/internal/parser/csv"
	"logisticsetl/internal/table"
)

var (
	flagOut       = flag.String("o", "", "output CSV path")
	flagList      = flag.String("list", "", "text file listing input paths, one per line")
	flagDelimiter = flag.String("delimiter", ",", "CSV field delimiter for input and output")
	flagVerbose   = flag.Bool("v", false, "enable debug logs")
)

var errNoInput = errors.New("no input file could be loaded")

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()
	if *flagOut == "" {
		fatalf("-o is required")
	}
	names := flag.Args()
	if *flagList != "" {
		listed, err := file.ReadList(*flagList)
		if err != nil {
			fatalf("read list: %v", err)
		}
		names = append(names, listed...)
	}
	if len(names) == 0 {
		fatalf("no input files given")
	}

	level := "info"
	if *flagVerbose {
		level = "debug"
	}
	log, err := logging.New(level, "console")
	if err != nil {
		fatalf("%v", err)
	}
	defer log.Sync()

	comma := ','
	if r, _ := utf8.DecodeRuneInString(*flagDelimiter); r != utf8.RuneError {
		comma = r
	}
	loader := ingest.NewLoader("", pcsv.Options{Comma: comma, LazyQuotes: true}, log)
	t, err := merge(context.Background(), loader, names, file.NewLocal(*flagOut), comma)
	if err != nil {
		log.Error("csvmerge: failed", zap.Error(err))
		return 1
	}
	log.Info("csvmerge: written",
		zap.String("output", *flagOut),
		zap.Int("rows", t.NumRows()),
		zap.Int("columns", t.NumCols()),
	)
	return 0
}

// merge loads names, concatenates the ones that loaded in the given order and
// writes the result to sink.
func merge(ctx context.Context, loader *ingest.Loader, names []string, sink datasource.Sink, comma rune) (*table.Table, error) {
	loaded := loader.LoadMany(ctx, names)
	tables := make([]*table.Table, 0, len(loaded))
	for _, name := range names {
		if t, ok := loaded[name]; ok {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil, errNoInput
	}
	t, err := table.Concat(tables...)
	if err != nil {
		return nil, err
	}

	w, err := sink.Create(ctx)
	if err != nil {
		return nil, err
	}
	if err := pcsv.Write(w, t, comma); err != nil {
		w.Close()
		return nil, err
	}
	return t, w.Close()
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
