package graph

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/graphscope/errors"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/internal/util"
	"github.com/teranos/graphscope/table"
)

// BuildOptions names the columns that carry derived display fields.
// Any of them may be absent from the tables; the derived field then falls back
// to a plain default.
type BuildOptions struct {
	Discriminant  string   // per-edge ordinal distinguishing parallel edges (year)
	LabelColumns  []string // joined into the node composite id and label
	TooltipHeader string
	TooltipBody   string
	ShapeColumn   string
	SquareValue   string // ShapeColumn value rendered as a square
	BaseYear      int    // first year of the discriminant range, drives self-loop sizing
}

// DefaultBuildOptions matches the column layout of the collaboration datasets
// the dashboard was built around
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Discriminant:  "year-factor",
		LabelColumns:  []string{"Country", "City", "id"},
		TooltipHeader: "pmid_list",
		TooltipBody:   "au_list",
		ShapeColumn:   "Country_type",
		SquareValue:   "LMIC",
		BaseYear:      2002,
	}
}

// Dataset is the immutable base graph. Every view is a subset of it by id.
type Dataset struct {
	nodes     []Node
	edges     []Edge
	nodeIndex map[string]int
	edgeIndex map[string]int
	scaling   ScalingVars
	features  Features
}

// Builder turns edge and node tables into a Dataset
type Builder struct {
	opts   BuildOptions
	logger *zap.SugaredLogger
}

// NewBuilder creates a dataset builder
func NewBuilder(opts BuildOptions, logger *zap.SugaredLogger) *Builder {
	return &Builder{
		opts:   opts,
		logger: logger.Named("graph.build"),
	}
}

// Build constructs the base dataset. nodes may be nil, in which case nodes are
// synthesized from edge endpoints. A missing required column fails the whole
// build with a schema GraphError and no dataset.
func (b *Builder) Build(edges, nodes *table.Table) (*Dataset, error) {
	if err := b.checkSchema(edges, nodes); err != nil {
		b.logger.Errorw("Dataset schema invalid", err.ToLogFields()...)
		return nil, err
	}

	ds := &Dataset{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[string]int),
		scaling: ScalingVars{
			Nodes: computeScaling(nodes, KeyID, KeySize),
			Edges: computeScaling(edges, KeyFrom, KeyTo, KeyWidth),
		},
		features: discoverFeatures(nodes, edges),
	}

	if nodes != nil {
		b.addTableNodes(ds, nodes)
	}
	b.addEdges(ds, edges, nodes != nil)

	b.logger.Infow("Dataset built",
		"nodes", len(ds.nodes),
		"edges", len(ds.edges),
		"node_table", nodes != nil,
		"numeric_node_attrs", len(ds.scaling.Nodes),
		"numeric_edge_attrs", len(ds.scaling.Edges))
	return ds, nil
}

func (b *Builder) checkSchema(edges, nodes *table.Table) *grapherr.GraphError {
	if edges == nil {
		return grapherr.New(grapherr.CategorySchema,
			errors.NewSchemaError("edge table is required"), "").
			WithSubcategory(grapherr.SubcategorySchemaMissingColumn)
	}
	for _, col := range []string{KeyFrom, KeyTo} {
		if !edges.Has(col) {
			return grapherr.New(grapherr.CategorySchema,
				errors.NewSchemaError("edge table is missing column %q", col),
				"Edge data must have 'from' and 'to' columns").
				WithSubcategory(grapherr.SubcategorySchemaMissingColumn).
				WithContext("column", col)
		}
	}
	if nodes != nil && !nodes.Has(KeyID) {
		return grapherr.New(grapherr.CategorySchema,
			errors.NewSchemaError("node table is missing column %q", KeyID),
			"Node data must have an 'id' column").
			WithSubcategory(grapherr.SubcategorySchemaMissingColumn).
			WithContext("column", KeyID)
	}
	return nil
}

func (b *Builder) addTableNodes(ds *Dataset, nodes *table.Table) {
	hasLabel := len(b.opts.LabelColumns) > 0
	for _, col := range b.opts.LabelColumns {
		if !nodes.Has(col) {
			hasLabel = false
		}
	}
	hasTooltip := nodes.Has(b.opts.TooltipHeader) && nodes.Has(b.opts.TooltipBody)

	for i := 0; i < nodes.Len(); i++ {
		n := Node(nodes.Row(i))
		id := util.Stringify(n[KeyID])
		if id == "" {
			b.logger.Warnw("Skipping node without id", "row", i)
			continue
		}
		if _, dup := ds.nodeIndex[id]; dup {
			b.logger.Warnw("Skipping duplicate node id", "id", id, "row", i)
			continue
		}
		n[KeyID] = id

		composite := id
		if hasLabel {
			parts := make([]string, len(b.opts.LabelColumns))
			for j, col := range b.opts.LabelColumns {
				parts[j] = util.Stringify(n[col])
			}
			composite = strings.Join(parts, compositeNodeSeparator)
		}
		n[KeyComposite] = composite
		n[KeyLabel] = composite

		if hasTooltip {
			n[KeyTitle] = nodeTooltip(util.Stringify(n[b.opts.TooltipHeader]), util.Stringify(n[b.opts.TooltipBody]))
		} else {
			n[KeyTitle] = composite
		}

		n[KeyShape] = ShapeDot
		if b.opts.ShapeColumn != "" && util.Stringify(n[b.opts.ShapeColumn]) == b.opts.SquareValue {
			n[KeyShape] = ShapeSquare
		}
		n[KeySize] = DefaultNodeSize
		n[KeyColor] = DefaultColor

		ds.nodeIndex[id] = len(ds.nodes)
		ds.nodes = append(ds.nodes, n)
	}
}

func (b *Builder) addEdges(ds *Dataset, edges *table.Table, fromTable bool) {
	hasDiscriminant := edges.Has(b.opts.Discriminant)
	pairOrdinal := make(map[string]int)

	for i := 0; i < edges.Len(); i++ {
		e := Edge(edges.Row(i))
		from, to := util.Stringify(e[KeyFrom]), util.Stringify(e[KeyTo])
		if from == "" || to == "" {
			b.logger.Warnw("Skipping edge with empty endpoint", "row", i)
			continue
		}
		e[KeyFrom], e[KeyTo] = from, to

		for _, endpoint := range []string{from, to} {
			if _, ok := ds.nodeIndex[endpoint]; ok {
				continue
			}
			if fromTable {
				b.logger.Warnw("Edge endpoint missing from node table, synthesizing node", "id", endpoint, "row", i)
			}
			ds.nodeIndex[endpoint] = len(ds.nodes)
			ds.nodes = append(ds.nodes, syntheticNode(endpoint))
		}

		pair := from + edgeIDSeparator + to
		var disc string
		if hasDiscriminant {
			disc = util.Stringify(e[b.opts.Discriminant])
			e[b.opts.Discriminant] = disc
		} else {
			disc = strconv.Itoa(pairOrdinal[pair])
			pairOrdinal[pair]++
		}

		id := pair + discriminantSeparator + disc
		if _, dup := ds.edgeIndex[id]; dup {
			n := 2
			for {
				candidate := id + "#" + strconv.Itoa(n)
				if _, taken := ds.edgeIndex[candidate]; !taken {
					id = candidate
					break
				}
				n++
			}
			b.logger.Debugw("Duplicate edge id disambiguated", "id", id, "row", i)
		}

		e[KeyID] = id
		e[KeyTitle] = id
		e[KeyComposite] = ds.nodes[ds.nodeIndex[from]].Composite() +
			compositeEdgeSeparator +
			ds.nodes[ds.nodeIndex[to]].Composite() +
			discriminantSeparator + disc
		e.SetColor(DefaultColor)

		if year, err := strconv.Atoi(disc); err == nil && hasDiscriminant && year > b.opts.BaseYear-1 {
			e[KeySelfReferenceSize] = math.Log(float64(year-(b.opts.BaseYear-1))/selfReferenceStep) / math.Log(selfReferenceLogBase)
		}

		ds.edgeIndex[id] = len(ds.edges)
		ds.edges = append(ds.edges, e)
	}
}

func syntheticNode(id string) Node {
	return Node{
		KeyID:        id,
		KeyLabel:     id,
		KeyComposite: id,
		KeyShape:     ShapeDot,
		KeySize:      DefaultNodeSize,
		KeyColor:     DefaultColor,
	}
}

// Base returns a deep copy of the whole dataset as a view
func (d *Dataset) Base() View {
	return View{Nodes: d.nodes, Edges: d.edges}.Clone()
}

// Node returns a copy of the base node with the given id
func (d *Dataset) Node(id string) (Node, bool) {
	i, ok := d.nodeIndex[id]
	if !ok {
		return nil, false
	}
	return d.nodes[i].Clone(), true
}

// Edge returns a copy of the base edge with the given id
func (d *Dataset) Edge(id string) (Edge, bool) {
	i, ok := d.edgeIndex[id]
	if !ok {
		return nil, false
	}
	return d.edges[i].Clone(), true
}

// NodeOrder returns the position of a node in base order, or -1
func (d *Dataset) NodeOrder(id string) int {
	if i, ok := d.nodeIndex[id]; ok {
		return i
	}
	return -1
}

// EdgeOrder returns the position of an edge in base order, or -1
func (d *Dataset) EdgeOrder(id string) int {
	if i, ok := d.edgeIndex[id]; ok {
		return i
	}
	return -1
}

// Scaling returns the numeric ranges computed at build time
func (d *Dataset) Scaling() ScalingVars {
	return d.scaling
}

// Features returns the attributes offered for coloring and sizing
func (d *Dataset) Features() Features {
	return d.features
}

// Len returns the number of base nodes and edges
func (d *Dataset) Len() (nodes, edges int) {
	return len(d.nodes), len(d.edges)
}

// Contains reports whether every node and edge of v exists in the dataset
func (d *Dataset) Contains(v View) bool {
	for _, n := range v.Nodes {
		if _, ok := d.nodeIndex[n.ID()]; !ok {
			return false
		}
	}
	for _, e := range v.Edges {
		if _, ok := d.edgeIndex[e.ID()]; !ok {
			return false
		}
	}
	return true
}
