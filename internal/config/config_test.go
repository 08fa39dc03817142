package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"logisticsetl/internal/validator"
)

const sample = `
data_sources:
  raw_data_path: data/raw
  cleaned_data_path: data/processed
  null_values: [NA]
cleaning_rules:
  remove_duplicates: true
  handle_missing_values: true
  missing_value_strategy: fill
  fill_values:
    quantity: 0
    carrier: Unknown
  outliers:
    - column: weight_kg
      method: iqr
      threshold: 3
validation_rules:
  required_columns: [shipment_id, origin]
  data_types:
    weight_kg: float
  value_ranges:
    weight_kg: {min: 0, max: 50000}
`

func TestParse_OverDefaults(t *testing.T) {
	cfg, err := Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Job != "logistics_etl" || cfg.Logging.Level != "info" || cfg.DataSources.Comma() != ',' {
		t.Fatalf("defaults not kept: %+v", cfg)
	}
	if !cfg.CleaningRules.RemoveDuplicates || cfg.CleaningRules.MissingValueStrategy != "fill" {
		t.Fatalf("cleaning rules = %+v", cfg.CleaningRules)
	}
	wantFill := map[string]any{"quantity": 0, "carrier": "Unknown"}
	if !reflect.DeepEqual(cfg.CleaningRules.FillValues, wantFill) {
		t.Fatalf("fill_values = %#v; want %#v", cfg.CleaningRules.FillValues, wantFill)
	}
	if got := cfg.CleaningRules.Outliers; len(got) != 1 || got[0] != (OutlierRule{Column: "weight_kg", Method: "iqr", Threshold: 3}) {
		t.Fatalf("outliers = %+v", got)
	}
	if r := cfg.ValidationRules.ValueRanges["weight_kg"]; r != (validator.Range{Min: 0, Max: 50000}) {
		t.Fatalf("value_ranges = %+v", cfg.ValidationRules.ValueRanges)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"unknown key", "cleaning_rules:\n  remove_dupes: true\n"},
		{"bad yaml", "data_sources: [\n"},
		{"lint error", "metrics:\n  backend: pushgateway\n"},
		{"bad delimiter", "data_sources:\n  delimiter: ';;'\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.in)); !errors.Is(err, ErrConfiguration) {
				t.Fatalf("err = %v; want ErrConfiguration", err)
			}
		})
	}
}

func TestParse_EmptyIsDefault(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("empty document = %+v; want defaults", cfg)
	}
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv(EnvMetricsBackend, "pushgateway")
	t.Setenv(EnvPushgatewayURL, "http://localhost:9091")

	cfg, err := Parse(strings.NewReader("job: nightly\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Metrics.Backend != "pushgateway" || cfg.Metrics.PushgatewayURL != "http://localhost:9091" {
		t.Fatalf("metrics = %+v", cfg.Metrics)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_config.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestLoad_ShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "pipeline_config.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if errs := Errors(Validate(cfg)); len(errs) != 0 {
		t.Fatalf("shipped config has errors: %v", errs)
	}
	if cfg.CleaningRules.MissingValueStrategy != "fill" {
		t.Fatalf("strategy = %q", cfg.CleaningRules.MissingValueStrategy)
	}
	if got := cfg.ValidationRules.ValueRanges["weight_kg"]; got.Max != 50000 {
		t.Fatalf("weight_kg range = %+v", got)
	}
}

func TestDataSources_ParseOptions(t *testing.T) {
	cfg, err := Parse(strings.NewReader(`
data_sources:
  delimiter: ";"
  null_values: [NA]
  trim_whitespace: true
  header_map:
    Shipment ID: shipment_id
cleaning_rules:
  remove_duplicates: true
  duplicate_keep: most-complete
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	opts := cfg.DataSources.ParseOptions()
	if opts.Comma != ';' || !opts.TrimSpace || !opts.LazyQuotes {
		t.Fatalf("options = %+v", opts)
	}
	if !reflect.DeepEqual(opts.NullValues, []string{"NA"}) || opts.HeaderMap["Shipment ID"] != "shipment_id" {
		t.Fatalf("options = %+v", opts)
	}
	if cfg.CleaningRules.DuplicateKeep != "most-complete" {
		t.Fatalf("duplicate_keep = %q", cfg.CleaningRules.DuplicateKeep)
	}

	cfg, err = Parse(strings.NewReader("data_sources:\n  lazy_quotes: false\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DataSources.ParseOptions().LazyQuotes {
		t.Fatalf("lazy_quotes: false was not honored")
	}
}
