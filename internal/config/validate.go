package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"logisticsetl/internal/table"
	"logisticsetl/internal/transformer/builtin"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but the run proceeds.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single lint finding. Path is the dotted key, e.g.
// "cleaning_rules.outliers[0].method".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Errors returns the messages of the error-severity issues.
func Errors(issues []Issue) []string {
	var out []string
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss.Error())
		}
	}
	return out
}

// Validate lints cfg. It never modifies it.
func Validate(cfg Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{SeverityError, "job", "job must not be empty; it labels logs and metrics"})
	}
	issues = append(issues, validateDataSources(cfg.DataSources)...)
	issues = append(issues, validateCleaning(cfg.CleaningRules)...)
	issues = append(issues, validateValidation(cfg.ValidationRules)...)
	issues = append(issues, validateLogging(cfg.Logging)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	return issues
}

func validateDataSources(d DataSources) []Issue {
	var issues []Issue
	if strings.TrimSpace(d.RawDataPath) == "" {
		issues = append(issues, Issue{SeverityError, "data_sources.raw_data_path", "must not be empty"})
	}
	if strings.TrimSpace(d.CleanedDataPath) == "" {
		issues = append(issues, Issue{SeverityError, "data_sources.cleaned_data_path", "must not be empty"})
	}
	if d.RawDataPath != "" && filepath.Clean(d.RawDataPath) == filepath.Clean(d.CleanedDataPath) {
		issues = append(issues, Issue{SeverityWarning, "data_sources.cleaned_data_path", "same as raw_data_path; batch runs overwrite their inputs"})
	}
	if d.Delimiter != "" {
		r, size := utf8.DecodeRuneInString(d.Delimiter)
		switch {
		case size != len(d.Delimiter):
			issues = append(issues, Issue{SeverityError, "data_sources.delimiter", fmt.Sprintf("%q must be a single character", d.Delimiter)})
		case r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError:
			issues = append(issues, Issue{SeverityError, "data_sources.delimiter", fmt.Sprintf("%q cannot be used as a delimiter", d.Delimiter)})
		}
	}
	for src, dst := range d.HeaderMap {
		if strings.TrimSpace(dst) == "" {
			issues = append(issues, Issue{SeverityError, "data_sources.header_map." + src, "target name must not be empty"})
		}
	}
	return issues
}

func validateCleaning(c CleaningRules) []Issue {
	var issues []Issue
	if c.HandleMissingValues {
		switch strings.ToLower(c.MissingValueStrategy) {
		case "drop", "fill", "interpolate":
		default:
			issues = append(issues, Issue{SeverityWarning, "cleaning_rules.missing_value_strategy",
				fmt.Sprintf("unknown strategy %q; missing values will be left as they are", c.MissingValueStrategy)})
		}
	}
	if len(c.FillValues) > 0 && (!c.HandleMissingValues || !strings.EqualFold(c.MissingValueStrategy, "fill")) {
		issues = append(issues, Issue{SeverityWarning, "cleaning_rules.fill_values", "ignored unless handle_missing_values is true and the strategy is fill"})
	}
	if !builtin.KnownPolicy(c.DuplicateKeep) {
		issues = append(issues, Issue{SeverityError, "cleaning_rules.duplicate_keep",
			fmt.Sprintf("unknown policy %q; use keep-first, keep-last or most-complete", c.DuplicateKeep)})
	}
	if len(c.DuplicateSubset) > 0 && !c.RemoveDuplicates {
		issues = append(issues, Issue{SeverityWarning, "cleaning_rules.duplicate_subset", "ignored unless remove_duplicates is true"})
	}
	for i, o := range c.Outliers {
		path := fmt.Sprintf("cleaning_rules.outliers[%d]", i)
		if strings.TrimSpace(o.Column) == "" {
			issues = append(issues, Issue{SeverityError, path + ".column", "must not be empty"})
		}
		switch strings.ToLower(o.Method) {
		case "iqr", "zscore":
		default:
			issues = append(issues, Issue{SeverityWarning, path + ".method",
				fmt.Sprintf("unknown method %q; the rule will be skipped", o.Method)})
		}
		if o.Threshold < 0 {
			issues = append(issues, Issue{SeverityError, path + ".threshold", "must not be negative"})
		}
	}
	return issues
}

func validateValidation(v ValidationRules) []Issue {
	var issues []Issue
	seen := make(map[string]bool, len(v.RequiredColumns))
	for i, c := range v.RequiredColumns {
		if seen[c] {
			issues = append(issues, Issue{SeverityWarning, fmt.Sprintf("validation_rules.required_columns[%d]", i),
				fmt.Sprintf("duplicate column %q", c)})
		}
		seen[c] = true
	}
	for col, typ := range v.DataTypes {
		path := "validation_rules.data_types." + col
		t, ok := table.LookupType(typ)
		switch {
		case !ok:
			issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf("unknown type %q is compared literally", typ)})
		case !t.Numeric():
			issues = append(issues, Issue{SeverityWarning, path, fmt.Sprintf("type %q is checked but not converted; only integer and float columns are converted", typ)})
		}
	}
	for col, r := range v.ValueRanges {
		if r.Min > r.Max {
			issues = append(issues, Issue{SeverityError, "validation_rules.value_ranges." + col,
				fmt.Sprintf("min %v is greater than max %v", r.Min, r.Max)})
		}
	}
	return issues
}

func validateLogging(l Logging) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, Issue{SeverityError, "logging.level", fmt.Sprintf("unknown level %q", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "", "console", "json":
	default:
		issues = append(issues, Issue{SeverityError, "logging.format", fmt.Sprintf("unknown format %q; use console or json", l.Format)})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url", "required when metrics.backend is pushgateway"})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.datadog_addr", "required when metrics.backend is datadog"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend", fmt.Sprintf("unknown backend %q; use none, pushgateway or datadog", m.Backend)})
	}
	return issues
}
