// Package parser defines the reader contract shared by the tabular parsers.
package parser

import (
	"io"

	"logisticsetl/internal/table"
)

// Parser reads a whole input into a table and reports how many rows it had
// to skip.
type Parser interface {
	Parse(r io.Reader) (*table.Table, int, error)
}
