package ingest

import (
	"time"
	"unsafe"

	"logisticsetl/internal/table"
)

// Info is a structural summary of a table.
type Info struct {
	Rows        int
	Columns     int
	Names       []string
	Types       map[string]table.Type
	NullCounts  map[string]int
	MemoryBytes int64
}

// Describe summarizes t. MemoryBytes is an estimate of the cell storage: one
// interface slot per cell plus the payload of strings and boxed values.
func Describe(t *table.Table) Info {
	info := Info{
		Rows:       t.NumRows(),
		Columns:    t.NumCols(),
		Names:      t.Names(),
		Types:      make(map[string]table.Type, t.NumCols()),
		NullCounts: make(map[string]int, t.NumCols()),
	}
	slot := int64(unsafe.Sizeof(any(nil)))
	for _, c := range t.Columns() {
		info.Types[c.Name] = c.Type
		info.NullCounts[c.Name] = c.Missing()
		info.MemoryBytes += slot * int64(len(c.Cells))
		for _, v := range c.Cells {
			info.MemoryBytes += cellBytes(v)
		}
	}
	return info
}

func cellBytes(v any) int64 {
	switch x := v.(type) {
	case nil:
		return 0
	case string:
		return int64(unsafe.Sizeof(x)) + int64(len(x))
	case time.Time:
		return int64(unsafe.Sizeof(x))
	default:
		return 8
	}
}
