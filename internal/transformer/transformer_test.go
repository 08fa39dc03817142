package transformer

import (
	"testing"

	"logisticsetl/internal/table"
)

func TestChain_AppliesInOrder(t *testing.T) {
	t.Parallel()

	in, err := table.New(table.Column{Name: "n", Type: table.Integer, Cells: []any{int64(1), int64(2), int64(3), int64(4)}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	dropFirst := Func(func(t *table.Table) *table.Table {
		return t.Filter(func(r int) bool { return r > 0 })
	})
	head2 := Func(func(t *table.Table) *table.Table { return t.Head(2) })

	out := Chain{dropFirst, head2}.Apply(in)
	c, _ := out.Column("n")
	if out.NumRows() != 2 || c.Cells[0] != int64(2) || c.Cells[1] != int64(3) {
		t.Fatalf("chain result = %#v", c.Cells)
	}
	if in.NumRows() != 4 {
		t.Fatalf("input mutated")
	}
	if got := (Chain{}).Apply(in); got != in {
		t.Fatalf("empty chain should return input")
	}
}
