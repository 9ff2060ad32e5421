package graph

import (
	"math"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/table"
)

// Bounds is the dataset-wide range of one numeric attribute
type Bounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Scale maps v into [0, k] relative to the bounds.
// Callers must check Defined first.
func (b Bounds) Scale(v, k float64) float64 {
	return k * (v - b.Min) / (b.Max - b.Min)
}

// Defined reports whether the range is wide enough to divide by
func (b Bounds) Defined() bool {
	return b.Max > b.Min
}

// ScalingVars holds the min/max of every numeric node and edge attribute,
// computed once over the full base tables. The maps are never mutated after Build.
type ScalingVars struct {
	Nodes map[string]Bounds `json:"nodes"`
	Edges map[string]Bounds `json:"edges"`
}

// Bounds returns the range of attr, or an ErrScalingUndefined error when the
// attribute is unknown, non-numeric, or constant across the dataset.
func (s ScalingVars) Bounds(entity Entity, attr string) (Bounds, error) {
	m := s.Nodes
	if entity == EntityEdge {
		m = s.Edges
	}

	b, ok := m[attr]
	if !ok {
		return Bounds{}, errors.Mark(
			errors.Newf("%s attribute %q is not numeric", entity, attr),
			errors.ErrScalingUndefined,
		)
	}
	if !b.Defined() {
		return b, errors.Mark(
			errors.Newf("%s attribute %q has no range (min = max = %v)", entity, attr, b.Min),
			errors.ErrScalingUndefined,
		)
	}
	return b, nil
}

// computeScaling takes the min/max of every numeric column, skipping excluded names
func computeScaling(t *table.Table, exclude ...string) map[string]Bounds {
	out := make(map[string]Bounds)
	if t == nil {
		return out
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	for _, col := range t.Columns() {
		if !col.Kind.Numeric() || skip[col.Name] {
			continue
		}
		b := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
		seen := false
		for i := 0; i < t.Len(); i++ {
			var f float64
			switch v := t.Value(i, col.Name).(type) {
			case int64:
				f = float64(v)
			case float64:
				f = v
			default:
				continue
			}
			seen = true
			b.Min = math.Min(b.Min, f)
			b.Max = math.Max(b.Max, f)
		}
		if seen {
			out[col.Name] = b
		}
	}
	return out
}
