// Package csv reads delimited text with a header row into a table.Table and
// writes tables back out. Column types are inferred from the data: a column
// is Integer when every non-missing value parses as an integer, Float when
// every value parses as a number, Boolean when every value is true/false,
// and String otherwise. Columns with no values at all are String.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"logisticsetl/internal/table"
)

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each field value.
	TrimSpace bool

	// NullValues lists extra tokens read as missing. The empty field is always
	// missing.
	NullValues []string

	// HeaderMap renames source headers (after BOM stripping).
	HeaderMap map[string]string

	// LazyQuotes accepts a bare " inside an unquoted field (12" pipe) and a
	// non-doubled " inside a quoted field instead of skipping the row.
	LazyQuotes bool

	// MaxRows, when > 0, stops reading after that many data rows.
	MaxRows int

	// OnSkip, when set, is called for every data row that could not be read.
	// line is the 1-based data row number (header excluded).
	OnSkip func(line int, err error)
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct {
	opt   Options
	nulls map[string]struct{}
}

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	nulls := map[string]struct{}{"": {}}
	for _, s := range opt.NullValues {
		nulls[s] = struct{}{}
	}
	return &Parser{opt: opt, nulls: nulls}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Parse consumes CSV records from r and returns the table along with the
// number of rows that were skipped because they could not be parsed or had
// more fields than the header. Rows with fewer fields are padded with missing
// cells.
func (p *Parser) Parse(r io.Reader) (*table.Table, int, error) {
	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.FieldsPerRecord = -1 // width is enforced below
	cr.LazyQuotes = p.opt.LazyQuotes

	h, err := cr.Read()
	if err == io.EOF {
		return table.Empty(), 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt.HeaderMap)

	raw := make([][]*string, len(headers))
	var skipped, kept int
	for line := 1; p.opt.MaxRows <= 0 || kept < p.opt.MaxRows; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			p.skip(line, err)
			continue
		}
		if len(row) > len(headers) {
			skipped++
			p.skip(line, fmt.Errorf("incorrect number of fields (expected %d, got %d)", len(headers), len(row)))
			continue
		}
		for i := range headers {
			var cell *string
			if i < len(row) {
				v := row[i]
				if p.opt.TrimSpace {
					v = strings.TrimSpace(v)
				}
				if _, null := p.nulls[v]; !null {
					cell = &v
				}
			}
			raw[i] = append(raw[i], cell)
		}
		kept++
	}

	cols := make([]table.Column, len(headers))
	for i, name := range headers {
		cols[i] = buildColumn(name, raw[i])
	}
	t, err := table.New(cols...)
	if err != nil {
		return nil, skipped, err
	}
	return t, skipped, nil
}

func (p *Parser) skip(line int, err error) {
	if p.opt.OnSkip != nil {
		p.opt.OnSkip(line, err)
	}
}

// buildColumn infers the column type from its raw values and converts them.
func buildColumn(name string, vals []*string) table.Column {
	typ := inferType(vals)
	cells := make([]any, len(vals))
	for i, v := range vals {
		if v == nil {
			continue
		}
		switch typ {
		case table.Integer:
			n, _ := table.ParseInt(*v)
			cells[i] = n
		case table.Float:
			f, _ := table.ParseFloat(*v)
			cells[i] = f
		case table.Boolean:
			b, _ := strconv.ParseBool(strings.TrimSpace(*v))
			cells[i] = b
		default:
			cells[i] = *v
		}
	}
	return table.Column{Name: name, Type: typ, Cells: cells}
}

// inferType returns the narrowest type that every non-missing value fits.
// Integer values must be plain integers here; "3.0" makes the column Float.
func inferType(vals []*string) table.Type {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, v := range vals {
		if v == nil {
			continue
		}
		seen = true
		s := strings.TrimSpace(*v)
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := table.ParseFloat(s); err != nil {
				isFloat = false
			}
		}
		if isBool {
			switch s {
			case "true", "True", "TRUE", "false", "False", "FALSE":
			default:
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			return table.String
		}
	}
	switch {
	case !seen:
		return table.String
	case isInt:
		return table.Integer
	case isFloat:
		return table.Float
	case isBool:
		return table.Boolean
	}
	return table.String
}

// normalizeHeaders strips a UTF-8 BOM from the first cell, applies headerMap,
// names blank headers "Unnamed: N", and suffixes repeated names with ".1",
// ".2", ... so every column name is unique.
func normalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	used := make(map[string]bool, len(h))
	for i, col := range h {
		c := col
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		if m, ok := headerMap[c]; ok && m != "" {
			c = m
		}
		if strings.TrimSpace(c) == "" {
			c = "Unnamed: " + strconv.Itoa(i)
		}
		name := c
		for n := 1; used[name]; n++ {
			name = c + "." + strconv.Itoa(n)
		}
		used[name] = true
		res[i] = name
	}
	return res
}
