package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/graphscope/graph"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/metrics"
	"github.com/teranos/graphscope/table"
)

const fixtureNodes = `id,Country,City,Country_type,degree,flat
1,Kenya,Nairobi,LMIC,3,1
2,France,Paris,HIC,5,1
3,Peru,Lima,LMIC,7,1
4,Chile,Santiago,LMIC,9,1
`

const fixtureEdges = `from,to,year-factor,edgetype,edge_sc,weight
1,2,2005,LMHC,N,1
2,3,2010,LMHC,N,4
3,3,2012,LMLM,Y,2
1,3,2020,LMLM,N,3
`

func fixture(t *testing.T) (*Pipeline, State) {
	t.Helper()
	return fixtureFrom(t, fixtureEdges, fixtureNodes)
}

func fixtureFrom(t *testing.T, edgesCSV, nodesCSV string) (*Pipeline, State) {
	t.Helper()
	edges, err := table.ReadCSV(strings.NewReader(edgesCSV))
	require.NoError(t, err)
	var nodes *table.Table
	if nodesCSV != "" {
		nodes, err = table.ReadCSV(strings.NewReader(nodesCSV))
		require.NoError(t, err)
	}

	ds, err := graph.NewBuilder(graph.DefaultBuildOptions(), zap.NewNop().Sugar()).Build(edges, nodes)
	require.NoError(t, err)

	p := New(ds, DefaultConfig(), metrics.NewRegistry(), zap.NewNop().Sugar())
	return p, NewState(ds)
}

func nodeIDs(v graph.View) []string {
	out := make([]string, len(v.Nodes))
	for i, n := range v.Nodes {
		out[i] = n.ID()
	}
	return out
}

func edgeIDs(v graph.View) []string {
	out := make([]string, len(v.Edges))
	for i, e := range v.Edges {
		out[i] = e.ID()
	}
	return out
}

func hiddenIDs(v graph.View) []string {
	var out []string
	for _, n := range v.Nodes {
		if n.Hidden() {
			out = append(out, n.ID())
		}
	}
	return out
}

func assertFallback(t *testing.T, res Result, stage, subcategory string) {
	t.Helper()
	require.NotNil(t, res.Err, "expected stage to fall back")
	assert.Equal(t, grapherr.CategoryFilter, res.Err.Category)
	assert.Equal(t, subcategory, res.Err.Subcategory)
	assert.Equal(t, stage, res.Err.Stage)
	assert.Equal(t, nodeIDs(res.State.Styled), nodeIDs(res.State.View))
	assert.Equal(t, edgeIDs(res.State.Styled), edgeIDs(res.State.View))
	assert.Empty(t, hiddenIDs(res.State.View))
}

var ctx = context.Background()

func TestEdgeTypes(t *testing.T) {
	p, s := fixture(t)

	res := p.EdgeTypes(ctx, s, []string{"LMLM", "LMHC", "HCHC"})
	require.Nil(t, res.Err)
	assert.Len(t, res.State.View.Edges, 4, "full selection is a no-op")

	res = p.EdgeTypes(ctx, s, []string{"LMLM"})
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"3__3/2012", "1__3/2020"}, edgeIDs(res.State.View))
	assert.Len(t, res.State.View.Nodes, 4, "edge filters leave nodes alone")

	res = p.EdgeTypes(ctx, s, nil)
	require.Nil(t, res.Err)
	assert.Empty(t, res.State.View.Edges)
}

func TestEdgeTypes_MissingAttribute(t *testing.T) {
	p, s := fixtureFrom(t, "from,to\n1,2\n", "")

	res := p.EdgeTypes(ctx, s, []string{"LMLM"})
	assertFallback(t, res, StageEdgeTypes, grapherr.SubcategoryFilterUnknownAttribute)
}

func TestSameRegion(t *testing.T) {
	p, s := fixture(t)

	res := p.SameRegion(ctx, s, []string{RegionCrossCountry, RegionDomestic})
	require.Nil(t, res.Err)
	assert.Len(t, res.State.View.Edges, 4)

	res = p.SameRegion(ctx, s, []string{RegionDomestic})
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"3__3/2012"}, edgeIDs(res.State.View))

	// composes with the edge-type stage of the same run
	typed := p.EdgeTypes(ctx, s, []string{"LMLM"})
	res = p.SameRegion(ctx, typed.State, []string{RegionCrossCountry})
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1__3/2020"}, edgeIDs(res.State.View))

	res = p.SameRegion(ctx, s, []string{"Overseas"})
	assertFallback(t, res, StageSameRegion, grapherr.SubcategoryFilterInvalidValue)
}

func TestSearch(t *testing.T) {
	p, s := fixture(t)

	tests := []struct {
		name   string
		text   string
		hidden []string
	}{
		{name: "empty shows everything", text: "", hidden: nil},
		{name: "label match", text: "Chile", hidden: []string{"1", "2", "3"}},
		{name: "incident edge match", text: "Paris", hidden: []string{"4"}},
		{name: "discriminant match", text: "/2012", hidden: []string{"1", "2", "4"}},
		{name: "case sensitive", text: "kenya", hidden: []string{"1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := p.Search(ctx, s, tt.text)
			require.Nil(t, res.Err)
			assert.Equal(t, tt.hidden, hiddenIDs(res.State.View))
			assert.Len(t, res.State.View.Nodes, 4, "search hides, it never drops")
		})
	}

	assert.Empty(t, hiddenIDs(s.View), "input state is not mutated")
	for _, n := range s.Styled.Nodes {
		_, has := n[graph.KeyHidden]
		assert.False(t, has, "styled nodes never carry hidden flags")
	}
}

func TestNodeQuery(t *testing.T) {
	p, s := fixture(t)

	res := p.NodeQuery(ctx, s, "   ")
	require.Nil(t, res.Err)
	assert.Len(t, res.State.View.Nodes, 4)

	res = p.NodeQuery(ctx, s, `Country_type == "LMIC" and degree > 3`)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"3", "4"}, nodeIDs(res.State.View))
	assert.Len(t, res.State.View.Edges, 4, "node filters leave edges alone")

	res = p.NodeQuery(ctx, s, `not degree > 5`)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1", "2"}, nodeIDs(res.State.View))

	tests := []struct {
		name string
		expr string
		sub  string
	}{
		{"syntax", `degree >`, grapherr.SubcategoryFilterInvalidSyntax},
		{"unknown attribute", `population > 3`, grapherr.SubcategoryFilterUnknownAttribute},
		{"type mismatch", `Country > 3`, grapherr.SubcategoryFilterTypeMismatch},
		{"not boolean", `degree + 1`, grapherr.SubcategoryFilterNotBoolean},
		{"function call", `upper(Country) == "X"`, grapherr.SubcategoryFilterInvalidSyntax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			narrowed := p.EdgeTypes(ctx, s, []string{"LMLM"}).State
			res := p.NodeQuery(ctx, narrowed, tt.expr)
			assertFallback(t, res, StageNodeQuery, tt.sub)
			assert.Equal(t, tt.expr, res.Err.Context["expression"])
			assert.NotEmpty(t, res.Err.ToUIMessage())
		})
	}
}

func TestNodeQuery_SynthesizedNodesSeeNull(t *testing.T) {
	// node 9 only appears in the edge table, so it has no degree column
	p, s := fixtureFrom(t, "from,to\n1,9\n", "id,degree\n1,4\n")

	res := p.NodeQuery(ctx, s, `degree > 1`)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1"}, nodeIDs(res.State.View))
}

func TestEdgeQuery(t *testing.T) {
	p, s := fixture(t)

	res := p.EdgeQuery(ctx, s, `weight >= 3 or edgetype == 'LMLM'`)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"2__3/2010", "3__3/2012", "1__3/2020"}, edgeIDs(res.State.View))

	res = p.EdgeQuery(ctx, s, "`year-factor` == \"2005\"")
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1__2/2005"}, edgeIDs(res.State.View))

	res = p.EdgeQuery(ctx, s, `from ==`)
	assertFallback(t, res, StageEdgeQuery, grapherr.SubcategoryFilterInvalidSyntax)
}

func TestOmitSelfLoops(t *testing.T) {
	p, s := fixture(t)

	res := p.OmitSelfLoops(ctx, s, false)
	assert.Len(t, res.State.View.Edges, 4)

	res = p.OmitSelfLoops(ctx, s, true)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1__2/2005", "2__3/2010", "1__3/2020"}, edgeIDs(res.State.View))
}

func TestYearRange(t *testing.T) {
	p, s := fixture(t)

	res := p.YearRange(ctx, s, 0, 20)
	require.Nil(t, res.Err)
	assert.Len(t, res.State.View.Edges, 4)

	res = p.YearRange(ctx, s, 3, 8)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1__2/2005", "2__3/2010"}, edgeIDs(res.State.View))

	res = p.YearRange(ctx, s, 10, 10)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"3__3/2012"}, edgeIDs(res.State.View))

	res = p.YearRange(ctx, s, 8, 3)
	assertFallback(t, res, StageYearRange, grapherr.SubcategoryFilterInvalidValue)
}

func TestYearRange_NonIntegerDiscriminant(t *testing.T) {
	p, s := fixtureFrom(t, "from,to,year-factor\n1,2,2005\n2,3,early\n", "")

	res := p.YearRange(ctx, s, 0, 5)
	assertFallback(t, res, StageYearRange, grapherr.SubcategoryFilterInvalidValue)
	assert.Equal(t, "2__3/early", res.Err.Context["edge"])
}

func TestOmitIsolated(t *testing.T) {
	p, s := fixture(t)

	res := p.OmitIsolated(ctx, s, true)
	require.Nil(t, res.Err)
	assert.Equal(t, []string{"1", "2", "3"}, nodeIDs(res.State.View))

	loopsOnly := p.EdgeTypes(ctx, s, []string{"LMLM"}).State
	loopsOnly = p.YearRange(ctx, loopsOnly, 10, 10).State
	res = p.OmitIsolated(ctx, loopsOnly, true)
	assert.Equal(t, []string{"3"}, nodeIDs(res.State.View))
}

func TestStage_RecordsMetrics(t *testing.T) {
	p, s := fixture(t)

	p.NodeQuery(ctx, s, `nope ==`)
	p.NodeQuery(ctx, s, `degree > 1`)

	families, err := p.metrics.GetPrometheusRegistry().Gather()
	require.NoError(t, err)

	found := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			switch f.GetName() {
			case "graphscope_stage_fallbacks_total":
				found["fallbacks"] += m.GetCounter().GetValue()
			case "graphscope_stage_duration_seconds":
				found["samples"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	assert.Equal(t, 1.0, found["fallbacks"])
	assert.Equal(t, 2.0, found["samples"])
}
