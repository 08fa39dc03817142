// Package builtin contains the table transformers the cleaner is built from.
//
// DeDup collapses rows that repeat over a set of key columns (all columns
// when Keys is empty) and chooses a winner per group according to Policy:
//
//   - "keep-first"   : keep the earliest occurrence (default)
//   - "keep-last"    : keep the latest occurrence
//   - "most-complete": keep the row with the most non-missing cells;
//     ties break by keep-first
//
// Winners are emitted in their original row order.
package builtin

import (
	"strings"

	"logisticsetl/internal/table"
)

// Duplicate winner policies.
const (
	KeepFirst    = "keep-first"
	KeepLast     = "keep-last"
	MostComplete = "most-complete"
)

// KnownPolicy reports whether p names a DeDup policy. Empty means KeepFirst.
func KnownPolicy(p string) bool {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "", KeepFirst, KeepLast, MostComplete:
		return true
	}
	return false
}

// DeDup removes duplicate rows.
type DeDup struct {
	// Keys are the columns that form the row identity. Names the table does
	// not have are ignored; if none remain the table is returned unchanged.
	Keys []string

	// Policy selects the winner among duplicates.
	Policy string
}

// Apply returns the table without duplicate rows.
func (d DeDup) Apply(in *table.Table) *table.Table {
	if in.NumRows() < 2 {
		return in
	}
	var cols []int
	if len(d.Keys) > 0 {
		for _, k := range d.Keys {
			if j := in.Index(k); j >= 0 {
				cols = append(cols, j)
			}
		}
		if len(cols) == 0 {
			return in
		}
	}

	set := table.NewRowSet(in, cols)
	winner := make(map[int]int, in.NumRows()) // group representative -> winning row
	switch strings.ToLower(strings.TrimSpace(d.Policy)) {
	case KeepLast:
		for r := 0; r < in.NumRows(); r++ {
			winner[set.Insert(r)] = r
		}
	case MostComplete:
		score := make([]int, in.NumRows())
		for _, c := range in.Columns() {
			for r, v := range c.Cells {
				if v != nil {
					score[r]++
				}
			}
		}
		for r := 0; r < in.NumRows(); r++ {
			rep := set.Insert(r)
			if cur, ok := winner[rep]; !ok || score[r] > score[cur] {
				winner[rep] = r
			}
		}
	default:
		for r := 0; r < in.NumRows(); r++ {
			if rep := set.Insert(r); rep == r {
				winner[r] = r
			}
		}
	}

	if len(winner) == in.NumRows() {
		return in
	}
	keep := make([]bool, in.NumRows())
	for _, r := range winner {
		keep[r] = true
	}
	return in.Filter(func(r int) bool { return keep[r] })
}
