// Package config defines the YAML configuration of a cleaning run, its
// defaults, and the loader that reads and lints it.
//
// Example (trimmed):
//
//	data_sources:
//	  raw_data_path: data/raw
//	  cleaned_data_path: data/processed
//	cleaning_rules:
//	  remove_duplicates: true
//	  handle_missing_values: true
//	  missing_value_strategy: fill
//	validation_rules:
//	  required_columns: [shipment_id, origin, destination]
//	  data_types: {weight_kg: float, quantity: integer}
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	pcsv "logisticsetl/internal/parser/csv"
	"logisticsetl/internal/transformer/builtin"
	"logisticsetl/internal/validator"
)

// ErrConfiguration wraps every error returned by Load and Parse.
var ErrConfiguration = errors.New("configuration error")

// Config is the whole run configuration. It is decoded once and then passed
// by value.
type Config struct {
	// Job names the run in logs and metrics.
	Job string `yaml:"job"`

	DataSources     DataSources     `yaml:"data_sources"`
	CleaningRules   CleaningRules   `yaml:"cleaning_rules"`
	ValidationRules ValidationRules `yaml:"validation_rules"`
	Logging         Logging         `yaml:"logging"`
	Metrics         Metrics         `yaml:"metrics"`
}

// DataSources locates input and output files and describes their format.
type DataSources struct {
	RawDataPath     string `yaml:"raw_data_path"`
	CleanedDataPath string `yaml:"cleaned_data_path"`

	// Delimiter is a single character; "," when empty.
	Delimiter string `yaml:"delimiter"`

	// NullValues are extra tokens read as missing, e.g. "NA" or "null".
	NullValues []string `yaml:"null_values"`

	// TrimWhitespace trims every field before null matching and type
	// inference.
	TrimWhitespace bool `yaml:"trim_whitespace"`

	// HeaderMap renames source headers, e.g. {"Shipment ID": shipment_id}.
	HeaderMap map[string]string `yaml:"header_map"`

	// LazyQuotes keeps rows with a bare " in an unquoted field. On by default.
	LazyQuotes bool `yaml:"lazy_quotes"`
}

// CleaningRules selects the cleaning steps.
type CleaningRules struct {
	RemoveDuplicates     bool           `yaml:"remove_duplicates"`
	DuplicateSubset      []string       `yaml:"duplicate_subset"`
	DuplicateKeep        string         `yaml:"duplicate_keep"` // keep-first|keep-last|most-complete
	HandleMissingValues  bool           `yaml:"handle_missing_values"`
	MissingValueStrategy string         `yaml:"missing_value_strategy"`
	FillValues           map[string]any `yaml:"fill_values"`
	StandardizeText      []string       `yaml:"standardize_text"`
	Outliers             []OutlierRule  `yaml:"outliers"`
}

// OutlierRule removes outlying rows of one numeric column.
type OutlierRule struct {
	Column    string  `yaml:"column"`
	Method    string  `yaml:"method"`
	Threshold float64 `yaml:"threshold"`
}

// ValidationRules describes the expected shape of the data.
type ValidationRules struct {
	RequiredColumns []string                   `yaml:"required_columns"`
	DataTypes       map[string]string          `yaml:"data_types"`
	ValueRanges     map[string]validator.Range `yaml:"value_ranges"`
}

// Logging configures the logger.
type Logging struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string `yaml:"backend"` // none|pushgateway|datadog
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
	Namespace      string `yaml:"namespace"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Job: "logistics_etl",
		DataSources: DataSources{
			RawDataPath:     "data/raw",
			CleanedDataPath: "data/processed",
			Delimiter:       ",",
			LazyQuotes:      true,
		},
		CleaningRules: CleaningRules{
			DuplicateKeep:        builtin.KeepFirst,
			MissingValueStrategy: "drop",
		},
		Logging: Logging{Level: "info", Format: "console"},
		Metrics: Metrics{Backend: "none", Namespace: "logistics_etl"},
	}
}

// Load reads and validates the configuration file at path.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes YAML from r over Default, applies environment overrides and
// validates the result. Unknown keys are rejected. Warnings do not fail
// Parse; use Validate to see them.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: decode: %w", ErrConfiguration, err)
	}
	cfg.applyEnv(os.Getenv)
	if errs := Errors(Validate(cfg)); len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrConfiguration, strings.Join(errs, "; "))
	}
	return cfg, nil
}

// Comma returns the delimiter as a rune.
func (d DataSources) Comma() rune {
	if d.Delimiter == "" {
		return ','
	}
	return []rune(d.Delimiter)[0]
}

// ParseOptions returns the CSV reader options the data source describes.
func (d DataSources) ParseOptions() pcsv.Options {
	return pcsv.Options{
		Comma:      d.Comma(),
		TrimSpace:  d.TrimWhitespace,
		NullValues: d.NullValues,
		HeaderMap:  d.HeaderMap,
		LazyQuotes: d.LazyQuotes,
	}
}

// Environment variables that override file settings when set.
const (
	EnvLogLevel       = "LOG_LEVEL"
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DATADOG_ADDR"
)

func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Logging.Level, EnvLogLevel)
	set(&c.Metrics.Backend, EnvMetricsBackend)
	set(&c.Metrics.PushgatewayURL, EnvPushgatewayURL)
	set(&c.Metrics.DatadogAddr, EnvDatadogAddr)
}
