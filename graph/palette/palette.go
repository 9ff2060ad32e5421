// Package palette assigns fixed palette colors to categorical attribute values.
package palette

import (
	"fmt"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
)

// None is the selection that reverts coloring to the default color
const None = graph.NoneOption

// binaryOffset is where one- and two-valued attributes start in the palette
const binaryOffset = 3

// Entry is one value-to-color assignment
type Entry struct {
	Value any    `json:"value"`
	Color string `json:"color"`
}

// Mapping is an ordered categorical color assignment for one attribute.
// The zero value is an empty mapping.
type Mapping struct {
	Attribute string
	entries   []Entry
	lookup    map[string]string
}

// Assign zips values, deduplicated in first-seen order, against the palette.
// When there are more values than colors the overflow values get no color and
// the partial mapping is returned with ErrInsufficientPalette.
func Assign(attribute string, values []any) (Mapping, error) {
	m := Mapping{Attribute: attribute, lookup: make(map[string]string)}

	distinct := make([]any, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		k := key(v)
		if !seen[k] {
			seen[k] = true
			distinct = append(distinct, v)
		}
	}

	colors := Kelly
	if len(distinct) <= 2 {
		colors = Kelly[binaryOffset:]
	}

	var err error
	if len(distinct) > len(colors) {
		err = errors.Mark(
			errors.Newf("%q has %d distinct values, palette has %d colors", attribute, len(distinct), len(colors)),
			errors.ErrInsufficientPalette,
		)
		distinct = distinct[:len(colors)]
	}

	m.entries = make([]Entry, len(distinct))
	for i, v := range distinct {
		m.entries[i] = Entry{Value: v, Color: colors[i]}
		m.lookup[key(v)] = colors[i]
	}
	return m, err
}

// Color returns the color assigned to v
func (m Mapping) Color(v any) (string, bool) {
	c, ok := m.lookup[key(v)]
	return c, ok
}

// Entries returns the assignments in palette order
func (m Mapping) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of colored values
func (m Mapping) Len() int {
	return len(m.entries)
}

// Legend returns one row per colored value
func (m Mapping) Legend() []graph.LegendRow {
	rows := make([]graph.LegendRow, len(m.entries))
	for i, e := range m.entries {
		rows[i] = graph.LegendRow{Color: e.Color, Label: label(e.Value)}
	}
	return rows
}

// key distinguishes values by type as well as text so 1 and "1" stay separate
func key(v any) string {
	return fmt.Sprintf("%T:%v", v, v)
}

func label(v any) string {
	if v == nil {
		return "(empty)"
	}
	return fmt.Sprint(v)
}
