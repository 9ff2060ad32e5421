package graph

import (
	"github.com/teranos/graphscope/internal/util"
)

// Node is an attribute map with the keys id, label, shape, size, color and
// optionally hidden. It serializes directly into the renderer's node shape.
type Node map[string]any

// Edge is an attribute map with the keys id, from, to, title and color,
// plus whatever domain columns the edge table carried.
type Edge map[string]any

// Entity selects between the node and edge side of the dataset
type Entity string

const (
	EntityNode Entity = "node"
	EntityEdge Entity = "edge"
)

// View is the visible subset of a dataset
type View struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// LegendRow is one (swatch, label) row of a color legend
type LegendRow struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// Legend describes the active colorings for nodes and edges
type Legend struct {
	Nodes []LegendRow `json:"nodes"`
	Edges []LegendRow `json:"edges"`
}

// Stats provides view statistics
type Stats struct {
	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
	HiddenNodes int `json:"hidden_nodes"`
}

// ID returns the node id
func (n Node) ID() string {
	return util.Stringify(n[KeyID])
}

// Label returns the display label
func (n Node) Label() string {
	return util.Stringify(n[KeyLabel])
}

// Composite returns the composite id, falling back to the id
func (n Node) Composite() string {
	if s, ok := n[KeyComposite].(string); ok && s != "" {
		return s
	}
	return n.ID()
}

// Size returns the node size
func (n Node) Size() float64 {
	f, _ := util.AsFloat(n[KeySize])
	return f
}

// Color returns the node color
func (n Node) Color() string {
	s, _ := n[KeyColor].(string)
	return s
}

// Hidden reports whether the node is soft-hidden
func (n Node) Hidden() bool {
	h, _ := n[KeyHidden].(bool)
	return h
}

// Clone returns a copy that can be mutated without affecting n
func (n Node) Clone() Node {
	return Node(cloneAttrs(n))
}

// ID returns the edge id
func (e Edge) ID() string {
	return util.Stringify(e[KeyID])
}

// From returns the source node id
func (e Edge) From() string {
	return util.Stringify(e[KeyFrom])
}

// To returns the target node id
func (e Edge) To() string {
	return util.Stringify(e[KeyTo])
}

// Composite returns the composite id, falling back to the id
func (e Edge) Composite() string {
	if s, ok := e[KeyComposite].(string); ok && s != "" {
		return s
	}
	return e.ID()
}

// Color returns the edge color from its structured color value
func (e Edge) Color() string {
	switch c := e[KeyColor].(type) {
	case map[string]any:
		s, _ := c["color"].(string)
		return s
	case string:
		return c
	}
	return ""
}

// SetColor replaces the structured color value
func (e Edge) SetColor(hex string) {
	e[KeyColor] = map[string]any{"color": hex}
}

// Width returns the edge width, or DefaultEdgeSize when unset
func (e Edge) Width() float64 {
	if f, ok := util.AsFloat(e[KeyWidth]); ok {
		return f
	}
	return DefaultEdgeSize
}

// Clone returns a copy that can be mutated without affecting e
func (e Edge) Clone() Edge {
	return Edge(cloneAttrs(e))
}

// Clone returns a view whose nodes and edges can be mutated freely
func (v View) Clone() View {
	out := View{
		Nodes: make([]Node, len(v.Nodes)),
		Edges: make([]Edge, len(v.Edges)),
	}
	for i, n := range v.Nodes {
		out.Nodes[i] = n.Clone()
	}
	for i, e := range v.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}

// Shallow returns a view with its own slices but shared node and edge maps.
// Filters that only drop entities use this; anything that mutates must Clone.
func (v View) Shallow() View {
	out := View{
		Nodes: make([]Node, len(v.Nodes)),
		Edges: make([]Edge, len(v.Edges)),
	}
	copy(out.Nodes, v.Nodes)
	copy(out.Edges, v.Edges)
	return out
}

// NodeIDs returns the set of node ids in the view
func (v View) NodeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(v.Nodes))
	for _, n := range v.Nodes {
		ids[n.ID()] = struct{}{}
	}
	return ids
}

// EdgeIDs returns the set of edge ids in the view
func (v View) EdgeIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(v.Edges))
	for _, e := range v.Edges {
		ids[e.ID()] = struct{}{}
	}
	return ids
}

// Stats counts visible entities
func (v View) Stats() Stats {
	s := Stats{Nodes: len(v.Nodes), Edges: len(v.Edges)}
	for _, n := range v.Nodes {
		if n.Hidden() {
			s.HiddenNodes++
		}
	}
	return s
}

func cloneAttrs(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if m, ok := v.(map[string]any); ok {
			v = cloneAttrs(m)
		}
		dst[k] = v
	}
	return dst
}
