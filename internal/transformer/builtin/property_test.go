package builtin

import (
	"fmt"
	"math/rand"
	"testing"

	"logisticsetl/internal/table"
)

// randomTable builds a small table whose cells repeat often and are missing
// about a quarter of the time, so duplicates and gaps are common.
func randomTable(t *testing.T, rng *rand.Rand) *table.Table {
	t.Helper()
	rows := rng.Intn(12)
	ids := make([]any, rows)
	cities := make([]any, rows)
	weights := make([]any, rows)
	for r := 0; r < rows; r++ {
		if rng.Intn(4) > 0 {
			ids[r] = int64(rng.Intn(4))
		}
		if rng.Intn(4) > 0 {
			cities[r] = []string{"brno", "praha", "ostrava"}[rng.Intn(3)]
		}
		if rng.Intn(4) > 0 {
			weights[r] = float64(rng.Intn(3)) + 0.5
		}
	}
	tb, err := table.New(
		table.Column{Name: "id", Type: table.Integer, Cells: ids},
		table.Column{Name: "city", Type: table.String, Cells: cities},
		table.Column{Name: "weight", Type: table.Float, Cells: weights},
	)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tb
}

func rowKey(tb *table.Table, r int, cols []int) string {
	row := tb.Row(r)
	if cols == nil {
		return fmt.Sprintf("%#v", row)
	}
	key := make([]any, len(cols))
	for i, c := range cols {
		key[i] = row[c]
	}
	return fmt.Sprintf("%#v", key)
}

func missingCells(tb *table.Table) int {
	n := 0
	for _, c := range tb.Columns() {
		n += c.Missing()
	}
	return n
}

func TestProperties_RandomTables(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(20261017))
	for i := 0; i < 500; i++ {
		in := randomTable(t, rng)

		for _, keys := range [][]string{nil, {"id"}, {"id", "city"}} {
			for _, policy := range []string{KeepFirst, KeepLast, MostComplete} {
				out := DeDup{Keys: keys, Policy: policy}.Apply(in)
				var cols []int
				for _, k := range keys {
					cols = append(cols, out.Index(k))
				}
				seen := map[string]bool{}
				for r := 0; r < out.NumRows(); r++ {
					k := rowKey(out, r, cols)
					if seen[k] {
						t.Fatalf("case %d keys %v %s: repeated key %s", i, keys, policy, k)
					}
					seen[k] = true
				}
				inKeys := map[string]bool{}
				inRows := map[string]bool{}
				for r := 0; r < in.NumRows(); r++ {
					inKeys[rowKey(in, r, cols)] = true
					inRows[rowKey(in, r, nil)] = true
				}
				if len(seen) != len(inKeys) {
					t.Fatalf("case %d keys %v %s: %d groups kept; want %d", i, keys, policy, len(seen), len(inKeys))
				}
				for r := 0; r < out.NumRows(); r++ {
					if !inRows[rowKey(out, r, nil)] {
						t.Fatalf("case %d keys %v %s: row %d not in input", i, keys, policy, r)
					}
				}
			}
		}

		complete := 0
		for r := 0; r < in.NumRows(); r++ {
			if missingInRow(in.Row(r)) == 0 {
				complete++
			}
		}
		dropped := Missing{Strategy: StrategyDrop}.Apply(in)
		if missingCells(dropped) != 0 || dropped.NumRows() != complete {
			t.Fatalf("case %d drop: %d rows, %d missing; want %d rows, 0 missing", i, dropped.NumRows(), missingCells(dropped), complete)
		}

		filled := Missing{Strategy: StrategyFill}.Apply(in)
		if missingCells(filled) != 0 || filled.NumRows() != in.NumRows() {
			t.Fatalf("case %d fill: %d rows, %d missing; want %d rows, 0 missing", i, filled.NumRows(), missingCells(filled), in.NumRows())
		}
	}
}

func missingInRow(row []any) int {
	n := 0
	for _, v := range row {
		if v == nil {
			n++
		}
	}
	return n
}
