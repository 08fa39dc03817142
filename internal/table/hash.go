package table

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/zeebo/xxh3"
)

// RowSet detects repeated rows of a table, optionally looking only at a subset
// of columns. Rows are bucketed by an xxh3 hash of their cells and compared
// cell by cell within a bucket, so hash collisions never merge distinct rows.
type RowSet struct {
	t       *Table
	cols    []int
	buckets map[uint64][]int
	h       *xxh3.Hasher
	scratch [8]byte
}

// NewRowSet returns an empty RowSet over t. cols lists the column positions
// that form the row identity; nil means every column.
func NewRowSet(t *Table, cols []int) *RowSet {
	if cols == nil {
		cols = make([]int, t.NumCols())
		for i := range cols {
			cols[i] = i
		}
	}
	return &RowSet{
		t:       t,
		cols:    cols,
		buckets: make(map[uint64][]int, t.NumRows()),
		h:       xxh3.New(),
	}
}

// Add records row and reports whether an equal row was added before.
func (s *RowSet) Add(row int) (seen bool) {
	return s.Insert(row) != row
}

// Insert records row and returns the first added row equal to it, which is
// row itself when no equal row was added before.
func (s *RowSet) Insert(row int) int {
	key := s.hash(row)
	for _, prev := range s.buckets[key] {
		if s.equal(prev, row) {
			return prev
		}
	}
	s.buckets[key] = append(s.buckets[key], row)
	return row
}

func (s *RowSet) equal(a, b int) bool {
	for _, j := range s.cols {
		c := s.t.columns[j]
		if !Equal(c.Cells[a], c.Cells[b]) {
			return false
		}
	}
	return true
}

// hash writes a type tag followed by a fixed-width or length-prefixed encoding
// of each cell, so ("ab","c") and ("a","bc") hash differently.
func (s *RowSet) hash(row int) uint64 {
	s.h.Reset()
	for _, j := range s.cols {
		switch v := s.t.columns[j].Cells[row].(type) {
		case nil:
			s.h.Write([]byte{0})
		case string:
			s.h.Write([]byte{1})
			s.writeUint(uint64(len(v)))
			s.h.WriteString(v)
		case int64:
			s.h.Write([]byte{2})
			s.writeUint(uint64(v))
		case float64:
			if v == 0 {
				v = 0 // -0 and +0 compare equal
			}
			s.h.Write([]byte{3})
			s.writeUint(math.Float64bits(v))
		case bool:
			if v {
				s.h.Write([]byte{4, 1})
			} else {
				s.h.Write([]byte{4, 0})
			}
		case time.Time:
			s.h.Write([]byte{5})
			s.writeUint(uint64(v.UnixNano()))
		default:
			str := Format(v)
			s.h.Write([]byte{6})
			s.writeUint(uint64(len(str)))
			s.h.WriteString(str)
		}
	}
	return s.h.Sum64()
}

func (s *RowSet) writeUint(u uint64) {
	binary.LittleEndian.PutUint64(s.scratch[:], u)
	s.h.Write(s.scratch[:])
}

// DuplicateRows returns, for each row, whether it repeats an earlier row over
// the given columns (nil means all columns).
func DuplicateRows(t *Table, cols []int) []bool {
	out := make([]bool, t.NumRows())
	set := NewRowSet(t, cols)
	for i := range out {
		out[i] = set.Add(i)
	}
	return out
}
