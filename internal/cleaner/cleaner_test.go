package cleaner

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"logisticsetl/internal/table"
	"logisticsetl/internal/transformer/builtin"
)

func scenario(t *testing.T) *table.Table {
	t.Helper()
	tb, err := table.New(
		table.Column{Name: "id", Type: table.Integer, Cells: []any{int64(1), int64(2), int64(2), int64(3), int64(4)}},
		table.Column{Name: "name", Type: table.String, Cells: []any{"Alice", "Bob", "Bob", "Charlie", nil}},
		table.Column{Name: "value", Type: table.Float, Cells: []any{10.5, 20.0, 20.0, nil, 40.0}},
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

func observed() (*Cleaner, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New(zap.New(core)), logs
}

func TestDedupe_LogsRemovedCount(t *testing.T) {
	t.Parallel()
	c, logs := observed()

	out := c.Dedupe(scenario(t))
	if out.NumRows() != 4 {
		t.Fatalf("rows = %d; want 4", out.NumRows())
	}
	entries := logs.FilterMessage("clean: removed duplicates").All()
	if len(entries) != 1 || entries[0].ContextMap()["removed"] != int64(1) {
		t.Fatalf("log entries = %+v", entries)
	}

	c.Dedupe(scenario(t), "nope")
	if logs.FilterMessage("clean: duplicate key column not found").Len() != 1 {
		t.Fatalf("expected warning for unknown key column")
	}
}

func TestDedupeKeep_Policies(t *testing.T) {
	t.Parallel()

	tb, err := table.New(
		table.Column{Name: "id", Type: table.Integer, Cells: []any{int64(1), int64(1), int64(2)}},
		table.Column{Name: "status", Type: table.String, Cells: []any{nil, "delivered", "pending"}},
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	cases := []struct {
		policy string
		want   any
	}{
		{builtin.KeepFirst, nil},
		{builtin.KeepLast, "delivered"},
		{builtin.MostComplete, "delivered"},
	}
	for _, tc := range cases {
		c, _ := observed()
		out := c.DedupeKeep(tb, tc.policy, "id")
		if out.NumRows() != 2 {
			t.Fatalf("%s: rows = %d; want 2", tc.policy, out.NumRows())
		}
		status, _ := out.Column("status")
		if status.Cells[0] != tc.want {
			t.Fatalf("%s: kept status %v; want %v", tc.policy, status.Cells[0], tc.want)
		}
	}
}

func TestHandleMissing(t *testing.T) {
	t.Parallel()
	c, logs := observed()

	if got := c.HandleMissing(scenario(t), "drop", nil); got.NumRows() != 3 {
		t.Fatalf("drop rows = %d; want 3", got.NumRows())
	}
	filled := c.HandleMissing(scenario(t), "fill", nil)
	if v, _ := filled.Column("value"); v.Missing() != 0 {
		t.Fatalf("value still has %d missing", v.Missing())
	}

	in := scenario(t)
	if got := c.HandleMissing(in, "magic", nil); got != in {
		t.Fatalf("unknown strategy changed the table")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Fatalf("expected one warning, got %+v", logs.All())
	}
}

func TestStandardizeText(t *testing.T) {
	t.Parallel()
	c, _ := observed()

	in, _ := table.New(table.Column{Name: "name", Cells: []any{"  Bob  ", "ALICE"}})
	out := c.StandardizeText(in, []string{"name", "missing"})
	name, _ := out.Column("name")
	if name.Cells[0] != "bob" || name.Cells[1] != "alice" {
		t.Fatalf("name = %#v", name.Cells)
	}
}

func TestConvertTypes_AbsorbsFailures(t *testing.T) {
	t.Parallel()
	c, logs := observed()

	in, _ := table.New(
		table.Column{Name: "good", Cells: []any{"1", "2"}},
		table.Column{Name: "bad", Cells: []any{"1", "oops"}},
	)
	out := c.ConvertTypes(in, map[string]string{"good": "integer", "bad": "float"})

	good, _ := out.Column("good")
	bad, _ := out.Column("bad")
	if good.Type != table.Integer || bad.Type != table.String {
		t.Fatalf("types = %s, %s", good.Type, bad.Type)
	}
	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(errs) != 1 || errs[0].ContextMap()["column"] != "bad" {
		t.Fatalf("error logs = %+v", errs)
	}
}

func TestRemoveOutliers(t *testing.T) {
	t.Parallel()
	c, logs := observed()

	in, _ := table.New(table.Column{Name: "v", Type: table.Float, Cells: []any{10.0, 11.0, 12.0, 13.0, 500.0}})
	if out := c.RemoveOutliers(in, "v", "iqr", 1.5); out.NumRows() != 4 {
		t.Fatalf("rows = %d; want 4", out.NumRows())
	}
	if got := c.RemoveOutliers(in, "absent", "iqr", 1.5); got != in {
		t.Fatalf("absent column changed the table")
	}
	if logs.FilterMessage("clean: outlier removal skipped").Len() != 1 {
		t.Fatalf("expected skip warning")
	}
}
