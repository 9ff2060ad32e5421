package pipeline

import (
	"context"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/graph/palette"
	"github.com/teranos/graphscope/internal/util"
)

// ColorNodes colors every styled node by attr. The palette is assigned over
// the distinct values of the visible nodes, in the order they first appear;
// styled nodes outside that set get the default color. palette.None resets
// all nodes to the default color and returns an empty mapping.
func (p *Pipeline) ColorNodes(ctx context.Context, in State, attr string) Result {
	return p.run(ctx, StageColorNodes, in, func() Result {
		if attr == palette.None || attr == "" {
			styled := cloneNodes(in.Styled.Nodes, func(n graph.Node) { n[graph.KeyColor] = graph.DefaultColor })
			return Result{State: reproject(in, styled, in.Styled.Edges), Mapping: &palette.Mapping{}}
		}
		if _, ok := nodeAttrs(in.Styled.Nodes)[attr]; !ok {
			return fallback(StageColorNodes, in, unknownStyleAttr(graph.EntityNode, attr))
		}

		values := make([]any, len(in.View.Nodes))
		for i, n := range in.View.Nodes {
			values[i] = n[attr]
		}
		mapping, err := palette.Assign(attr, values)

		styled := cloneNodes(in.Styled.Nodes, func(n graph.Node) {
			n[graph.KeyColor] = colorOf(mapping, n[attr])
		})
		return Result{
			State:   reproject(in, styled, in.Styled.Edges),
			Mapping: &mapping,
			Warning: paletteWarning(StageColorNodes, attr, err),
		}
	})
}

// ColorEdges is ColorNodes for edges
func (p *Pipeline) ColorEdges(ctx context.Context, in State, attr string) Result {
	return p.run(ctx, StageColorEdges, in, func() Result {
		if attr == palette.None || attr == "" {
			styled := cloneEdges(in.Styled.Edges, func(e graph.Edge) { e.SetColor(graph.DefaultColor) })
			return Result{State: reproject(in, in.Styled.Nodes, styled), Mapping: &palette.Mapping{}}
		}
		if _, ok := edgeAttrs(in.Styled.Edges)[attr]; !ok {
			return fallback(StageColorEdges, in, unknownStyleAttr(graph.EntityEdge, attr))
		}

		values := make([]any, len(in.View.Edges))
		for i, e := range in.View.Edges {
			values[i] = e[attr]
		}
		mapping, err := palette.Assign(attr, values)

		styled := cloneEdges(in.Styled.Edges, func(e graph.Edge) {
			e.SetColor(colorOf(mapping, e[attr]))
		})
		return Result{
			State:   reproject(in, in.Styled.Nodes, styled),
			Mapping: &mapping,
			Warning: paletteWarning(StageColorEdges, attr, err),
		}
	})
}

func colorOf(m palette.Mapping, v any) string {
	if c, ok := m.Color(v); ok {
		return c
	}
	return graph.DefaultColor
}

func paletteWarning(stage, attr string, err error) *grapherr.GraphError {
	if err == nil {
		return nil
	}
	return grapherr.New(grapherr.CategoryPalette, err, "").
		WithStage(stage).
		WithContext("attribute", attr)
}

func unknownStyleAttr(entity graph.Entity, attr string) *grapherr.GraphError {
	return grapherr.New(grapherr.CategoryFilter,
		errors.Newf("no %s has attribute %q", entity, attr),
		"Unknown attribute selected - showing the full graph instead").
		WithSubcategory(grapherr.SubcategoryFilterUnknownAttribute).
		WithContext("attribute", attr)
}

// SizeNodes sets every styled node's size to the base size plus
// k*(v-min)/(max-min) of attr. Sizes are derived from the base size each
// time, so applying the stage twice changes nothing. An attribute without a
// usable range leaves the state unchanged and returns a warning.
func (p *Pipeline) SizeNodes(ctx context.Context, in State, attr string) Result {
	return p.run(ctx, StageSizeNodes, in, func() Result {
		if attr == graph.NoneOption || attr == "" {
			styled := cloneNodes(in.Styled.Nodes, func(n graph.Node) { n[graph.KeySize] = graph.DefaultNodeSize })
			return applied(reproject(in, styled, in.Styled.Edges))
		}

		bounds, err := p.ds.Scaling().Bounds(graph.EntityNode, attr)
		if err != nil {
			return Result{State: in, Warning: scalingWarning(StageSizeNodes, attr, err, p.ds.Scaling().Nodes)}
		}

		k := p.cfg.ScaleFactor
		styled := cloneNodes(in.Styled.Nodes, func(n graph.Node) {
			size := graph.DefaultNodeSize
			if v, ok := util.AsFloat(n[attr]); ok {
				size += bounds.Scale(v, k)
			}
			n[graph.KeySize] = size
		})
		return applied(reproject(in, styled, in.Styled.Edges))
	})
}

// SizeEdges sets every styled edge's width to k*(v-min)/(max-min) of attr
func (p *Pipeline) SizeEdges(ctx context.Context, in State, attr string) Result {
	return p.run(ctx, StageSizeEdges, in, func() Result {
		if attr == graph.NoneOption || attr == "" {
			styled := cloneEdges(in.Styled.Edges, func(e graph.Edge) { e[graph.KeyWidth] = graph.DefaultEdgeSize })
			return applied(reproject(in, in.Styled.Nodes, styled))
		}

		bounds, err := p.ds.Scaling().Bounds(graph.EntityEdge, attr)
		if err != nil {
			return Result{State: in, Warning: scalingWarning(StageSizeEdges, attr, err, p.ds.Scaling().Edges)}
		}

		k := p.cfg.ScaleFactor
		styled := cloneEdges(in.Styled.Edges, func(e graph.Edge) {
			width := graph.DefaultEdgeSize
			if v, ok := util.AsFloat(e[attr]); ok {
				width = bounds.Scale(v, k)
			}
			e[graph.KeyWidth] = width
		})
		return applied(reproject(in, in.Styled.Nodes, styled))
	})
}

func scalingWarning(stage, attr string, err error, known map[string]graph.Bounds) *grapherr.GraphError {
	sub := grapherr.SubcategoryScalingNotNumeric
	if _, ok := known[attr]; ok {
		sub = grapherr.SubcategoryScalingFlatRange
	}
	return grapherr.New(grapherr.CategoryScaling, err, "").
		WithSubcategory(sub).
		WithStage(stage).
		WithContext("attribute", attr)
}

func cloneNodes(nodes []graph.Node, set func(graph.Node)) []graph.Node {
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		c := n.Clone()
		set(c)
		out[i] = c
	}
	return out
}

func cloneEdges(edges []graph.Edge, set func(graph.Edge)) []graph.Edge {
	out := make([]graph.Edge, len(edges))
	for i, e := range edges {
		c := e.Clone()
		set(c)
		out[i] = c
	}
	return out
}

// reproject swaps in new styled entities and rebuilds the view from them by
// id, carrying over the soft-hidden flags of the old view
func reproject(in State, nodes []graph.Node, edges []graph.Edge) State {
	out := State{Styled: graph.View{Nodes: nodes, Edges: edges}}

	byNode := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byNode[n.ID()] = n
	}
	out.View.Nodes = make([]graph.Node, 0, len(in.View.Nodes))
	for _, old := range in.View.Nodes {
		n, ok := byNode[old.ID()]
		if !ok {
			continue
		}
		if hidden, set := old[graph.KeyHidden]; set {
			n = n.Clone()
			n[graph.KeyHidden] = hidden
		}
		out.View.Nodes = append(out.View.Nodes, n)
	}

	byEdge := make(map[string]graph.Edge, len(edges))
	for _, e := range edges {
		byEdge[e.ID()] = e
	}
	out.View.Edges = make([]graph.Edge, 0, len(in.View.Edges))
	for _, old := range in.View.Edges {
		if e, ok := byEdge[old.ID()]; ok {
			out.View.Edges = append(out.View.Edges, e)
		}
	}
	return out
}
