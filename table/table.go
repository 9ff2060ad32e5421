// Package table loads the edge and node tables the dataset is built from.
//
// A Table is column-oriented metadata over row-oriented cells. Each column has
// an inferred Kind; cells hold nil, string, int64, float64 or bool.
package table

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/internal/util"
)

// Kind is the inferred type of a column
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindBool
)

// String returns the name of the kind
func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "string"
	}
}

// Numeric reports whether values of this kind can be scaled
func (k Kind) Numeric() bool {
	return k == KindInt || k == KindFloat
}

// Column describes one column of a table
type Column struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Table is an in-memory tabular dataset with typed columns
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]any
}

// Columns returns the table's columns in header order
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Has reports whether the table has a column with the given name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row i in the named column, or nil
func (t *Table) Value(i int, name string) any {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i][c]
}

// Row returns row i as an attribute map keyed by column name
func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.columns))
	for c, col := range t.columns {
		row[col.Name] = t.rows[i][c]
	}
	return row
}

// Unique counts the distinct non-nil values of a column
func (t *Table) Unique(name string) int {
	c, ok := t.index[name]
	if !ok {
		return 0
	}
	seen := make(map[any]struct{})
	for _, row := range t.rows {
		if row[c] != nil {
			seen[row[c]] = struct{}{}
		}
	}
	return len(seen)
}

// ReadCSVFile reads a CSV file with a header row
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return t, nil
}

// ReadCSV reads CSV data with a header row and infers column kinds
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("csv has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read row")
		}
		if len(rec) != len(header) {
			line, _ := reader.FieldPos(0)
			return nil, errors.Newf("line %d has %d fields, header has %d", line, len(rec), len(header))
		}
		records = append(records, rec)
	}

	return FromStrings(header, records)
}

// FromStrings builds a table from raw string cells, inferring each column's kind.
// Empty cells become nil.
func FromStrings(header []string, records [][]string) (*Table, error) {
	t, err := newTable(header)
	if err != nil {
		return nil, err
	}

	t.rows = make([][]any, len(records))
	for i := range records {
		t.rows[i] = make([]any, len(header))
	}

	for c := range header {
		kind := inferKind(records, c)
		t.columns[c].Kind = kind
		for i, rec := range records {
			t.rows[i][c] = parseCell(strings.TrimSpace(rec[c]), kind)
		}
	}
	return t, nil
}

// FromRecords builds a table from already-typed cells.
// Supported cell types are nil, string, bool, int, int64 and float64. A column
// mixing ints and floats becomes float; any other mix becomes string.
func FromRecords(header []string, records [][]any) (*Table, error) {
	t, err := newTable(header)
	if err != nil {
		return nil, err
	}

	t.rows = make([][]any, len(records))
	for i, rec := range records {
		if len(rec) != len(header) {
			return nil, errors.Newf("record %d has %d values, header has %d", i, len(rec), len(header))
		}
		t.rows[i] = make([]any, len(header))
		for c, v := range rec {
			switch x := v.(type) {
			case int:
				t.rows[i][c] = int64(x)
			case nil, string, bool, int64, float64:
				t.rows[i][c] = x
			default:
				return nil, errors.Newf("record %d column %q: unsupported value type %T", i, header[c], v)
			}
		}
	}

	for c := range header {
		t.columns[c].Kind = unifyColumn(t.rows, c)
	}
	return t, nil
}

func newTable(header []string) (*Table, error) {
	if len(header) == 0 {
		return nil, errors.New("table has no columns")
	}
	t := &Table{
		columns: make([]Column, len(header)),
		index:   make(map[string]int, len(header)),
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.Newf("column %d has an empty name", i)
		}
		if _, dup := t.index[name]; dup {
			return nil, errors.Newf("duplicate column %q", name)
		}
		t.columns[i] = Column{Name: name}
		t.index[name] = i
	}
	return t, nil
}

// inferKind picks the narrowest kind that parses every non-empty cell of column c
func inferKind(records [][]string, c int) Kind {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, rec := range records {
		s := strings.TrimSpace(rec[c])
		if s == "" {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
				isFloat = false
			}
		}
		if isBool {
			if _, ok := parseBool(s); !ok {
				isBool = false
			}
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}

	switch {
	case !seen:
		return KindString
	case isInt:
		return KindInt
	case isFloat:
		return KindFloat
	case isBool:
		return KindBool
	default:
		return KindString
	}
}

func parseCell(s string, kind Kind) any {
	if s == "" {
		return nil
	}
	switch kind {
	case KindInt:
		v, _ := strconv.ParseInt(s, 10, 64)
		return v
	case KindFloat:
		v, _ := strconv.ParseFloat(s, 64)
		return v
	case KindBool:
		v, _ := parseBool(s)
		return v
	default:
		return s
	}
}

// parseBool accepts the spellings produced by spreadsheet and pandas exports
func parseBool(s string) (bool, bool) {
	switch s {
	case "true", "True", "TRUE":
		return true, true
	case "false", "False", "FALSE":
		return false, true
	}
	return false, false
}

func unifyColumn(rows [][]any, c int) Kind {
	var hasInt, hasFloat, hasBool, hasString bool
	for _, row := range rows {
		switch row[c].(type) {
		case int64:
			hasInt = true
		case float64:
			hasFloat = true
		case bool:
			hasBool = true
		case string:
			hasString = true
		}
	}

	switch {
	case hasString || (hasBool && (hasInt || hasFloat)):
		for _, row := range rows {
			if row[c] != nil {
				row[c] = util.Stringify(row[c])
			}
		}
		return KindString
	case hasFloat:
		for _, row := range rows {
			if v, ok := row[c].(int64); ok {
				row[c] = float64(v)
			}
		}
		return KindFloat
	case hasInt:
		return KindInt
	case hasBool:
		return KindBool
	default:
		return KindString
	}
}
