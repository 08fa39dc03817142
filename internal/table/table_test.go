package table

import (
	"reflect"
	"testing"
	"time"
)

func sample(t *testing.T) *Table {
	t.Helper()
	tb, err := New(
		Column{Name: "id", Type: Integer, Cells: []any{int64(1), int64(2), int64(2), int64(3), int64(4)}},
		Column{Name: "name", Type: String, Cells: []any{"Alice", "Bob", "Bob", "Charlie", nil}},
		Column{Name: "value", Type: Float, Cells: []any{10.5, 20.0, 20.0, nil, 40.0}},
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tb
}

func TestNew_RejectsRaggedAndDuplicateColumns(t *testing.T) {
	t.Parallel()

	if _, err := New(
		Column{Name: "a", Cells: []any{"x"}},
		Column{Name: "b", Cells: []any{"x", "y"}},
	); err == nil {
		t.Fatalf("expected row-count error")
	}
	if _, err := New(
		Column{Name: "a", Cells: []any{"x"}},
		Column{Name: "a", Cells: []any{"y"}},
	); err == nil {
		t.Fatalf("expected duplicate-column error")
	}
}

func TestTable_Accessors(t *testing.T) {
	t.Parallel()
	tb := sample(t)

	if tb.NumRows() != 5 || tb.NumCols() != 3 {
		t.Fatalf("shape = %dx%d; want 5x3", tb.NumRows(), tb.NumCols())
	}
	if got, want := tb.Names(), []string{"id", "name", "value"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names = %v; want %v", got, want)
	}
	if got := tb.Row(1); !reflect.DeepEqual(got, []any{int64(2), "Bob", 20.0}) {
		t.Fatalf("Row(1) = %#v", got)
	}
	c, ok := tb.Column("name")
	if !ok || c.Missing() != 1 {
		t.Fatalf("name column missing=%d ok=%v; want 1 true", c.Missing(), ok)
	}
	if tb.Index("value") != 2 || tb.Index("nope") != -1 {
		t.Fatalf("Index mismatch")
	}
}

func TestTable_FilterDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	tb := sample(t)

	out := tb.Filter(func(r int) bool { return r%2 == 0 })
	if out.NumRows() != 3 {
		t.Fatalf("rows = %d; want 3", out.NumRows())
	}
	if tb.NumRows() != 5 {
		t.Fatalf("input changed: rows = %d", tb.NumRows())
	}
	ids, _ := out.Column("id")
	if !reflect.DeepEqual(ids.Cells, []any{int64(1), int64(2), int64(4)}) {
		t.Fatalf("ids = %#v", ids.Cells)
	}
}

func TestTable_WithColumnReplacesAndAppends(t *testing.T) {
	t.Parallel()
	tb := sample(t)

	repl, err := tb.WithColumn(Column{Name: "name", Type: String, Cells: []any{"a", "b", "c", "d", "e"}})
	if err != nil {
		t.Fatalf("WithColumn: %v", err)
	}
	if got := repl.Names(); !reflect.DeepEqual(got, []string{"id", "name", "value"}) {
		t.Fatalf("order changed: %v", got)
	}
	orig, _ := tb.Column("name")
	if orig.Cells[0] != "Alice" {
		t.Fatalf("input mutated: %v", orig.Cells[0])
	}

	app, err := tb.WithColumn(Column{Name: "extra", Cells: make([]any, 5)})
	if err != nil {
		t.Fatalf("WithColumn append: %v", err)
	}
	if app.NumCols() != 4 {
		t.Fatalf("cols = %d; want 4", app.NumCols())
	}
	if _, err := tb.WithColumn(Column{Name: "short", Cells: []any{1}}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestConcat_UnionAndPromotion(t *testing.T) {
	t.Parallel()

	a, _ := New(
		Column{Name: "id", Type: Integer, Cells: []any{int64(1)}},
		Column{Name: "w", Type: Integer, Cells: []any{int64(5)}},
	)
	b, _ := New(
		Column{Name: "id", Type: Integer, Cells: []any{int64(2)}},
		Column{Name: "w", Type: Float, Cells: []any{2.5}},
		Column{Name: "note", Type: String, Cells: []any{"x"}},
	)
	got, err := Concat(a, b)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	if got.NumRows() != 2 || !reflect.DeepEqual(got.Names(), []string{"id", "w", "note"}) {
		t.Fatalf("shape/names = %d %v", got.NumRows(), got.Names())
	}
	w, _ := got.Column("w")
	if w.Type != Float || !reflect.DeepEqual(w.Cells, []any{5.0, 2.5}) {
		t.Fatalf("w = %s %#v", w.Type, w.Cells)
	}
	note, _ := got.Column("note")
	if !reflect.DeepEqual(note.Cells, []any{nil, "x"}) {
		t.Fatalf("note = %#v", note.Cells)
	}
}

func TestConvert(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		in      any
		to      Type
		want    any
		wantErr bool
	}{
		{"nil stays nil", nil, Integer, nil, false},
		{"string to int", "42", Integer, int64(42), false},
		{"integral float string to int", "3.0", Integer, int64(3), false},
		{"bad int", "abc", Integer, nil, true},
		{"float truncates to int", 2.9, Integer, int64(2), false},
		{"int to float", int64(7), Float, 7.0, false},
		{"string to float", " 1.5 ", Float, 1.5, false},
		{"bool words", "Yes", Boolean, true, false},
		{"date", "2024-03-01", Datetime, ts, false},
		{"eu date", "01.03.2024", Datetime, ts, false},
		{"bad date", "soon", Datetime, nil, true},
		{"float to string", 20.0, String, "20.0", false},
		{"bool to string", true, String, "True", false},
		{"time to float", ts, Float, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.in, tc.to)
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v; wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if !Equal(got, tc.want) {
				t.Fatalf("Convert(%#v, %s) = %#v; want %#v", tc.in, tc.to, got, tc.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{int64(-3), "-3"},
		{10.5, "10.5"},
		{20.0, "20.0"},
		{false, "False"},
		{time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02 03:04:05"},
	}
	for _, tc := range cases {
		if got := Format(tc.in); got != tc.want {
			t.Errorf("Format(%#v) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestDuplicateRows(t *testing.T) {
	t.Parallel()
	tb := sample(t)

	got := DuplicateRows(tb, nil)
	want := []bool{false, false, true, false, false}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("DuplicateRows = %v; want %v", got, want)
	}

	// Missing cells compare equal to each other.
	nulls, _ := New(Column{Name: "a", Cells: []any{nil, nil, "x"}})
	if got := DuplicateRows(nulls, nil); !reflect.DeepEqual(got, []bool{false, true, false}) {
		t.Fatalf("nil rows = %v", got)
	}

	// Length-prefixed hashing keeps ("ab","c") and ("a","bc") apart.
	split, _ := New(
		Column{Name: "x", Cells: []any{"ab", "a"}},
		Column{Name: "y", Cells: []any{"c", "bc"}},
	)
	if got := DuplicateRows(split, nil); got[1] {
		t.Fatalf("distinct rows reported as duplicates")
	}
}

func TestLookupType(t *testing.T) {
	t.Parallel()

	cases := map[string]Type{
		"integer": Integer, "Int64": Integer, " float32 ": Float, "bool": Boolean,
		"timestamp": Datetime, "object": String,
	}
	for in, want := range cases {
		if got, ok := LookupType(in); !ok || got != want {
			t.Errorf("LookupType(%q) = %s, %v; want %s", in, got, ok, want)
		}
	}
	if _, ok := LookupType("category"); ok {
		t.Fatalf("unexpected match for unknown name")
	}
}
