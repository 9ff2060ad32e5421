package pipeline

import (
	"context"
	"math"
	"strings"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/internal/util"
	"github.com/teranos/graphscope/query"
)

// EdgeTypes keeps the styled edges whose edge type is selected.
// Selecting every configured type is a no-op.
func (p *Pipeline) EdgeTypes(ctx context.Context, in State, selected []string) Result {
	return p.run(ctx, StageEdgeTypes, in, func() Result {
		if coversAll(selected, p.cfg.EdgeTypes) {
			return applied(in)
		}
		if err := requireEdgeAttr(in.Styled, p.cfg.EdgeTypeAttr); err != nil {
			return fallback(StageEdgeTypes, in, err)
		}

		keep := toSet(selected)
		out := State{Styled: in.Styled, View: graph.View{Nodes: in.View.Nodes}}
		for _, e := range in.Styled.Edges {
			if _, ok := keep[util.Stringify(e[p.cfg.EdgeTypeAttr])]; ok {
				out.View.Edges = append(out.View.Edges, e)
			}
		}
		return applied(out)
	})
}

// SameRegion keeps the incoming edges whose region value maps from a selected label.
// Selecting every label is a no-op.
func (p *Pipeline) SameRegion(ctx context.Context, in State, selected []string) Result {
	return p.run(ctx, StageSameRegion, in, func() Result {
		if coversAll(selected, p.cfg.RegionLabels()) {
			return applied(in)
		}

		keep := make(map[string]struct{}, len(selected))
		for _, label := range selected {
			v, ok := p.cfg.Regions[label]
			if !ok {
				return fallback(StageSameRegion, in, invalidValue("unknown region option %q", label))
			}
			keep[v] = struct{}{}
		}
		if err := requireEdgeAttr(in.Styled, p.cfg.RegionAttr); err != nil {
			return fallback(StageSameRegion, in, err)
		}

		out := State{Styled: in.Styled, View: graph.View{Nodes: in.View.Nodes}}
		for _, e := range in.View.Edges {
			if _, ok := keep[util.Stringify(e[p.cfg.RegionAttr])]; ok {
				out.View.Edges = append(out.View.Edges, e)
			}
		}
		return applied(out)
	})
}

// Search soft-hides view nodes that do not match text. A node matches when
// its label contains text, or when any view edge incident to it (by composite
// id) has a composite id containing text. Empty text unhides everything.
func (p *Pipeline) Search(ctx context.Context, in State, text string) Result {
	return p.run(ctx, StageSearch, in, func() Result {
		var hits []string
		if text != "" {
			for _, e := range in.View.Edges {
				if c := e.Composite(); strings.Contains(c, text) {
					hits = append(hits, c)
				}
			}
		}

		out := State{Styled: in.Styled, View: graph.View{
			Nodes: make([]graph.Node, len(in.View.Nodes)),
			Edges: in.View.Edges,
		}}
		for i, n := range in.View.Nodes {
			c := n.Clone()
			c[graph.KeyHidden] = !searchMatch(n, text, hits)
			out.View.Nodes[i] = c
		}
		return applied(out)
	})
}

func searchMatch(n graph.Node, text string, edgeHits []string) bool {
	if text == "" || strings.Contains(n.Label(), text) {
		return true
	}
	composite := n.Composite()
	for _, c := range edgeHits {
		if strings.Contains(c, composite) {
			return true
		}
	}
	return false
}

// NodeQuery keeps the view nodes whose attributes satisfy expr. A blank
// expression is a no-op. Edges are left alone, including those whose endpoint
// was dropped; the renderer does not draw an edge without both endpoints.
func (p *Pipeline) NodeQuery(ctx context.Context, in State, expr string) Result {
	return p.run(ctx, StageNodeQuery, in, func() Result {
		if strings.TrimSpace(expr) == "" {
			return applied(in)
		}
		q, err := p.compile(expr, nodeAttrs(in.Styled.Nodes))
		if err != nil {
			return fallback(StageNodeQuery, in, err)
		}

		out := State{Styled: in.Styled, View: graph.View{Edges: in.View.Edges}}
		for _, n := range in.View.Nodes {
			match, evalErr := q.Eval(withNulls(n, q.Attributes()))
			if evalErr != nil {
				return fallback(StageNodeQuery, in, queryError(evalErr, expr))
			}
			if match {
				out.View.Nodes = append(out.View.Nodes, n)
			}
		}
		return applied(out)
	})
}

// EdgeQuery keeps the view edges whose attributes satisfy expr. A blank
// expression is a no-op.
func (p *Pipeline) EdgeQuery(ctx context.Context, in State, expr string) Result {
	return p.run(ctx, StageEdgeQuery, in, func() Result {
		if strings.TrimSpace(expr) == "" {
			return applied(in)
		}
		q, err := p.compile(expr, edgeAttrs(in.Styled.Edges))
		if err != nil {
			return fallback(StageEdgeQuery, in, err)
		}

		out := State{Styled: in.Styled, View: graph.View{Nodes: in.View.Nodes}}
		for _, e := range in.View.Edges {
			match, evalErr := q.Eval(withNulls(e, q.Attributes()))
			if evalErr != nil {
				return fallback(StageEdgeQuery, in, queryError(evalErr, expr))
			}
			if match {
				out.View.Edges = append(out.View.Edges, e)
			}
		}
		return applied(out)
	})
}

// compile parses expr and checks that every attribute it reads exists on at
// least one entity. Entities missing an attribute that others carry see null.
func (p *Pipeline) compile(expr string, known map[string]struct{}) (*query.Expr, *grapherr.GraphError) {
	q, err := query.Compile(expr)
	if err != nil {
		return nil, queryError(err, expr)
	}
	for _, attr := range q.Attributes() {
		if _, ok := known[attr]; !ok {
			return nil, queryError(query.UnknownAttribute(attr), expr)
		}
	}
	return q, nil
}

func queryError(err error, expr string) *grapherr.GraphError {
	sub := grapherr.SubcategoryFilterInvalidSyntax
	msg := "Invalid filter expression - showing the full graph instead"
	switch {
	case errors.Is(err, query.ErrUnknownAttribute):
		sub = grapherr.SubcategoryFilterUnknownAttribute
		msg = "Filter refers to an unknown attribute - showing the full graph instead"
	case errors.Is(err, query.ErrTypeMismatch):
		sub = grapherr.SubcategoryFilterTypeMismatch
		msg = "Filter compares values of different types - showing the full graph instead"
	case errors.Is(err, query.ErrNotBoolean):
		sub = grapherr.SubcategoryFilterNotBoolean
		msg = "Filter must evaluate to true or false - showing the full graph instead"
	case errors.Is(err, query.ErrUnsupported):
		msg = "Filter uses an unsupported construct - showing the full graph instead"
	}
	return grapherr.New(grapherr.CategoryFilter, err, msg).
		WithSubcategory(sub).
		WithContext("expression", expr)
}

func nodeAttrs(nodes []graph.Node) map[string]struct{} {
	out := make(map[string]struct{})
	for _, n := range nodes {
		for k := range n {
			out[k] = struct{}{}
		}
	}
	return out
}

func edgeAttrs(edges []graph.Edge) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range edges {
		for k := range e {
			out[k] = struct{}{}
		}
	}
	return out
}

// withNulls returns attrs with every missing name bound to nil, copying only when needed
func withNulls[M ~map[string]any](attrs M, names []string) map[string]any {
	m := map[string]any(attrs)
	for _, name := range names {
		if _, ok := m[name]; ok {
			continue
		}
		cp := make(map[string]any, len(m)+len(names))
		for k, v := range m {
			cp[k] = v
		}
		for _, n := range names {
			if _, ok := cp[n]; !ok {
				cp[n] = nil
			}
		}
		return cp
	}
	return m
}

// OmitSelfLoops drops view edges whose endpoints are the same node
func (p *Pipeline) OmitSelfLoops(ctx context.Context, in State, on bool) Result {
	return p.run(ctx, StageSelfLoops, in, func() Result {
		if !on {
			return applied(in)
		}
		out := State{Styled: in.Styled, View: graph.View{Nodes: in.View.Nodes}}
		for _, e := range in.View.Edges {
			if e.From() != e.To() {
				out.View.Edges = append(out.View.Edges, e)
			}
		}
		return applied(out)
	})
}

// YearRange keeps view edges whose year lies in [BaseYear+lo, BaseYear+hi].
// The full slider range is a no-op.
func (p *Pipeline) YearRange(ctx context.Context, in State, lo, hi int) Result {
	return p.run(ctx, StageYearRange, in, func() Result {
		if lo == 0 && hi == p.cfg.YearSpan {
			return applied(in)
		}
		if lo < 0 || hi > p.cfg.YearSpan || lo > hi {
			return fallback(StageYearRange, in, invalidValue("year range [%d, %d] is outside [0, %d]", lo, hi, p.cfg.YearSpan))
		}

		first, last := p.cfg.BaseYear+lo, p.cfg.BaseYear+hi
		out := State{Styled: in.Styled, View: graph.View{Nodes: in.View.Nodes}}
		for _, e := range in.View.Edges {
			year, ok := integral(e[p.cfg.Discriminant])
			if !ok {
				return fallback(StageYearRange, in, invalidValue(
					"edge %s has non-integer %s %q", e.ID(), p.cfg.Discriminant, util.Stringify(e[p.cfg.Discriminant])).
					WithContext("edge", e.ID()))
			}
			if year >= first && year <= last {
				out.View.Edges = append(out.View.Edges, e)
			}
		}
		return applied(out)
	})
}

func integral(v any) (int, bool) {
	f, ok := util.AsFloat(v)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// OmitIsolated keeps only the view nodes that are an endpoint of a view edge
func (p *Pipeline) OmitIsolated(ctx context.Context, in State, on bool) Result {
	return p.run(ctx, StageIsolated, in, func() Result {
		if !on {
			return applied(in)
		}
		endpoints := make(map[string]struct{}, 2*len(in.View.Edges))
		for _, e := range in.View.Edges {
			endpoints[e.From()] = struct{}{}
			endpoints[e.To()] = struct{}{}
		}
		out := State{Styled: in.Styled, View: graph.View{Edges: in.View.Edges}}
		for _, n := range in.View.Nodes {
			if _, ok := endpoints[n.ID()]; ok {
				out.View.Nodes = append(out.View.Nodes, n)
			}
		}
		return applied(out)
	})
}

func requireEdgeAttr(v graph.View, attr string) *grapherr.GraphError {
	if len(v.Edges) == 0 {
		return nil
	}
	for _, e := range v.Edges {
		if _, ok := e[attr]; ok {
			return nil
		}
	}
	return grapherr.New(grapherr.CategoryFilter,
		errors.Newf("no edge has attribute %q", attr),
		"This filter needs an edge attribute the data does not have - showing the full graph instead").
		WithSubcategory(grapherr.SubcategoryFilterUnknownAttribute).
		WithContext("attribute", attr)
}

// coversAll reports whether selected contains every option
func coversAll(selected, options []string) bool {
	have := toSet(selected)
	for _, o := range options {
		if _, ok := have[o]; !ok {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}
