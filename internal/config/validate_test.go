package config

import (
	"strings"
	"testing"

	"logisticsetl/internal/validator"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func TestValidate_DefaultsAreClean(t *testing.T) {
	t.Parallel()
	if issues := Validate(Default()); len(issues) != 0 {
		t.Fatalf("Validate(Default()) = %+v", issues)
	}
}

func TestValidate_Findings(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Job = " "
	cfg.DataSources.CleanedDataPath = ""
	cfg.CleaningRules.HandleMissingValues = true
	cfg.CleaningRules.MissingValueStrategy = "guess"
	cfg.CleaningRules.FillValues = map[string]any{"a": 1}
	cfg.CleaningRules.DuplicateSubset = []string{"id"}
	cfg.CleaningRules.DuplicateKeep = "newest"
	cfg.DataSources.HeaderMap = map[string]string{"Weight": " "}
	cfg.CleaningRules.Outliers = []OutlierRule{{Column: "", Method: "mad", Threshold: -1}}
	cfg.ValidationRules.RequiredColumns = []string{"id", "id"}
	cfg.ValidationRules.DataTypes = map[string]string{"when": "datetime", "kind": "category"}
	cfg.ValidationRules.ValueRanges = map[string]validator.Range{"w": {Min: 5, Max: 1}}
	cfg.Logging.Format = "xml"
	cfg.Metrics.Backend = "statsd"

	issues := Validate(cfg)
	want := []struct {
		sev  IssueSeverity
		path string
		msg  string
	}{
		{SeverityError, "job", "must not be empty"},
		{SeverityError, "data_sources.cleaned_data_path", "must not be empty"},
		{SeverityWarning, "cleaning_rules.missing_value_strategy", "unknown strategy"},
		{SeverityWarning, "cleaning_rules.fill_values", "ignored"},
		{SeverityWarning, "cleaning_rules.duplicate_subset", "ignored"},
		{SeverityError, "cleaning_rules.duplicate_keep", "unknown policy"},
		{SeverityError, "data_sources.header_map.Weight", "must not be empty"},
		{SeverityError, "cleaning_rules.outliers[0].column", "must not be empty"},
		{SeverityWarning, "cleaning_rules.outliers[0].method", "unknown method"},
		{SeverityError, "cleaning_rules.outliers[0].threshold", "negative"},
		{SeverityWarning, "validation_rules.required_columns[1]", "duplicate"},
		{SeverityWarning, "validation_rules.data_types.when", "not converted"},
		{SeverityWarning, "validation_rules.data_types.kind", "compared literally"},
		{SeverityError, "validation_rules.value_ranges.w", "greater than max"},
		{SeverityError, "logging.format", "unknown format"},
		{SeverityError, "metrics.backend", "unknown backend"},
	}
	for _, w := range want {
		if !hasIssue(t, issues, w.sev, w.path, w.msg) {
			t.Errorf("missing %s issue at %s (%q); got %+v", w.sev, w.path, w.msg, issues)
		}
	}
	if got := len(Errors(issues)); got != 9 {
		t.Fatalf("Errors() = %d; want 9", got)
	}
}
