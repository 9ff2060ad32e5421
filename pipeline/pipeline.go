// Package pipeline implements the stages that turn a session's styled copy of
// the dataset into the visible view. Every stage takes a State and returns a
// Result; a stage that cannot apply its control falls back to the full styled
// view and reports a GraphError instead of failing the interaction.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/graph/palette"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/metrics"
)

// Stage names, used in logs, metrics and notices
const (
	StageEdgeTypes  = "edge_types"
	StageSameRegion = "same_region"
	StageSearch     = "search"
	StageNodeQuery  = "node_query"
	StageEdgeQuery  = "edge_query"
	StageColorNodes = "color_nodes"
	StageColorEdges = "color_edges"
	StageSizeNodes  = "size_nodes"
	StageSizeEdges  = "size_edges"
	StageSelfLoops  = "omit_self_loops"
	StageYearRange  = "year_range"
	StageIsolated   = "omit_isolated"
)

// Config carries the column roles and constants the stages work with
type Config struct {
	EdgeTypeAttr string            // edge attribute filtered by EdgeTypes
	EdgeTypes    []string          // every edge type the dashboard offers
	RegionAttr   string            // edge attribute filtered by SameRegion
	Regions      map[string]string // region label -> RegionAttr value
	Discriminant string            // edge attribute holding the year
	BaseYear     int
	YearSpan     int     // slider runs over [0, YearSpan]
	ScaleFactor  float64 // k in k*(v-min)/(max-min)
}

// Region labels offered by the same-region checklist
const (
	RegionCrossCountry = "Cross country edge"
	RegionDomestic     = "Domestic edge"
)

// DefaultConfig matches the collaboration datasets the dashboard was built around
func DefaultConfig() Config {
	return Config{
		EdgeTypeAttr: "edgetype",
		EdgeTypes:    []string{"LMLM", "LMHC", "HCHC"},
		RegionAttr:   "edge_sc",
		Regions: map[string]string{
			RegionCrossCountry: "N",
			RegionDomestic:     "Y",
		},
		Discriminant: "year-factor",
		BaseYear:     2002,
		YearSpan:     20,
		ScaleFactor:  20,
	}
}

// RegionLabels returns the configured region labels in display order
func (c Config) RegionLabels() []string {
	out := make([]string, 0, len(c.Regions))
	for _, label := range []string{RegionCrossCountry, RegionDomestic} {
		if _, ok := c.Regions[label]; ok {
			out = append(out, label)
		}
	}
	for label := range c.Regions {
		if label != RegionCrossCountry && label != RegionDomestic {
			out = append(out, label)
		}
	}
	return out
}

// State is what flows between stages. Styled holds every base entity with the
// session's persisted colors and sizes; View is the visible subset of Styled.
// Styled never carries hidden flags.
type State struct {
	Styled graph.View
	View   graph.View
}

// NewState seeds a state from the dataset: everything styled by default and visible
func NewState(ds *graph.Dataset) State {
	styled := ds.Base()
	return State{Styled: styled, View: styled.Shallow()}
}

// Reseed returns the state with View reset to the whole of Styled
func (s State) Reseed() State {
	return State{Styled: s.Styled, View: s.Styled.Shallow()}
}

// Result is the outcome of one stage.
//
// Err set means the stage failed and State is the fallback (View equal to
// the full Styled set). Warning set means the stage applied but has something
// to tell the user. Mapping is set by successful color stages.
type Result struct {
	State   State
	Err     *grapherr.GraphError
	Warning *grapherr.GraphError
	Mapping *palette.Mapping
}

// Pipeline runs stages against one dataset. It is stateless between calls
// and safe for concurrent use.
type Pipeline struct {
	ds      *graph.Dataset
	cfg     Config
	metrics *metrics.Registry
	logger  *zap.SugaredLogger
}

// New creates a pipeline. reg may be nil to disable metrics.
func New(ds *graph.Dataset, cfg Config, reg *metrics.Registry, log *zap.SugaredLogger) *Pipeline {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Pipeline{
		ds:      ds,
		cfg:     cfg,
		metrics: reg,
		logger:  log.Named("pipeline"),
	}
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Dataset returns the dataset the pipeline runs against
func (p *Pipeline) Dataset() *graph.Dataset {
	return p.ds
}

// run wraps a stage body with panic recovery, timing, logging and metrics
func (p *Pipeline) run(ctx context.Context, stage string, in State, body func() Result) (res Result) {
	start := time.Now()
	log := logger.FromContext(ctx, p.logger)

	defer func() {
		if r := recover(); r != nil {
			res = fallback(stage, in, grapherr.Newf(grapherr.CategoryInternal, "",
				"stage %s panicked: %v", stage, r).
				WithSubcategory(grapherr.SubcategoryInternalPanic))
		}

		duration := time.Since(start)
		subcategory := ""
		switch {
		case res.Err != nil:
			subcategory = res.Err.Subcategory
			if subcategory == "" {
				subcategory = string(res.Err.Category)
			}
			log.Warnw("Stage fell back to styled view",
				append(res.Err.ToLogFields(), logger.FieldDurationMS, duration.Milliseconds())...)
		case res.Warning != nil:
			log.Infow("Stage applied with warning", res.Warning.ToLogFields()...)
		default:
			log.Debugw("Stage applied",
				logger.FieldStage, stage,
				logger.FieldNodes, len(res.State.View.Nodes),
				logger.FieldEdges, len(res.State.View.Edges),
				logger.FieldDurationMS, duration.Milliseconds())
		}

		if p.metrics != nil {
			p.metrics.RecordStage(stage, subcategory, duration)
		}
	}()

	return body()
}

// fallback is the state every failing stage returns: the full styled set, unhidden
func fallback(stage string, in State, err *grapherr.GraphError) Result {
	return Result{
		State: in.Reseed(),
		Err:   err.WithStage(stage),
	}
}

func applied(s State) Result {
	return Result{State: s}
}

func invalidValue(format string, args ...any) *grapherr.GraphError {
	msg := fmt.Sprintf(format, args...)
	return grapherr.New(grapherr.CategoryFilter, errors.New(msg), msg).
		WithSubcategory(grapherr.SubcategoryFilterInvalidValue)
}
