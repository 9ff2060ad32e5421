// Package dashboard maps dashboard control changes onto pipeline stages.
//
// A Session holds one browser session's styled copy of the dataset, its
// color mappings and the last control values. Apply decides which stages to
// run from what changed, runs them in order and assembles the render payload.
package dashboard

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/graphscope/graph"
	grapherr "github.com/teranos/graphscope/graph/error"
	"github.com/teranos/graphscope/graph/palette"
	"github.com/teranos/graphscope/logger"
	"github.com/teranos/graphscope/metrics"
	"github.com/teranos/graphscope/pipeline"
)

// Payload is everything the client needs to render one interaction
type Payload struct {
	Graph   graph.View        `json:"graph"`
	Legend  graph.Legend      `json:"legend"`
	Notices []grapherr.Notice `json:"notices"`
	Stats   graph.Stats       `json:"stats"`
}

// Session is one dashboard session. Sessions share the pipeline (and so the
// immutable dataset) but nothing mutable.
type Session struct {
	ID string

	pipe      *pipeline.Pipeline
	validator *Validator
	metrics   *metrics.Registry
	logger    *zap.SugaredLogger

	mu          sync.Mutex
	state       pipeline.State
	last        *Controls
	nodeMapping palette.Mapping
	edgeMapping palette.Mapping
}

// NewSession creates a session seeded with the base dataset. reg may be nil.
func NewSession(id string, p *pipeline.Pipeline, reg *metrics.Registry, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		ID:        id,
		pipe:      p,
		validator: NewValidator(p.Config()),
		metrics:   reg,
		logger:    log.Named("dashboard").With(logger.FieldSessionID, id),
		state:     pipeline.NewState(p.Dataset()),
	}
}

// Apply runs one interaction. trigger names the control the user just
// changed (one of the Control* constants) and may be empty. Invalid controls
// return an ErrInvalidRequest error and leave the session untouched; every
// other problem is reported as a notice in an otherwise valid payload.
func (s *Session) Apply(ctx context.Context, c Controls, trigger string) (Payload, error) {
	if err := s.validator.Validate(c); err != nil {
		return Payload{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx = logger.WithSessionID(ctx, s.ID)
	log := logger.FromContext(ctx, s.logger)

	// Initial page load: render the base graph and diff the next call against the defaults
	if s.last == nil && trigger == "" {
		defaults := DefaultControls(s.pipe.Config())
		s.last = &defaults
		payload := s.payload(nil)
		s.record(trigger, payload)
		log.Debugw("Initial render", logger.FieldNodes, payload.Stats.Nodes, logger.FieldEdges, payload.Stats.Edges)
		return payload, nil
	}

	var diff map[string]bool
	if s.last != nil {
		diff = changed(*s.last, c)
	} else {
		diff = changed(DefaultControls(s.pipe.Config()), c)
	}
	if trigger != "" {
		diff[trigger] = true
	}

	var notices []grapherr.Notice
	state := s.state.Reseed()
	step := func(res pipeline.Result) pipeline.Result {
		state = res.State
		if res.Err != nil {
			notices = append(notices, res.Err.ToNotice())
		}
		if res.Warning != nil {
			notices = append(notices, res.Warning.ToNotice())
		}
		return res
	}

	cfg := s.pipe.Config()

	step(s.pipe.EdgeTypes(ctx, state, c.EdgeTypes))
	step(s.pipe.SameRegion(ctx, state, c.Regions))

	if diff[ControlSearch] || c.Search != "" {
		step(s.pipe.Search(ctx, state, c.Search))
	}
	if diff[ControlNodeFilter] || !blank(c.NodeFilter) {
		step(s.pipe.NodeQuery(ctx, state, c.NodeFilter))
	}
	if diff[ControlEdgeFilter] || !blank(c.EdgeFilter) {
		step(s.pipe.EdgeQuery(ctx, state, c.EdgeFilter))
	}

	// Colors and sizes persist in the styled set, so they only run on change
	if diff[ControlColorNodes] {
		if res := step(s.pipe.ColorNodes(ctx, state, c.ColorNodes)); res.Mapping != nil {
			s.nodeMapping = *res.Mapping
		}
	}
	if diff[ControlColorEdges] {
		if res := step(s.pipe.ColorEdges(ctx, state, c.ColorEdges)); res.Mapping != nil {
			s.edgeMapping = *res.Mapping
		}
	}
	if diff[ControlSizeNodes] {
		step(s.pipe.SizeNodes(ctx, state, c.SizeNodes))
	}
	if diff[ControlSizeEdges] {
		step(s.pipe.SizeEdges(ctx, state, c.SizeEdges))
	}

	if c.OmitSelfLoops {
		step(s.pipe.OmitSelfLoops(ctx, state, true))
	}
	if c.YearRange != [2]int{0, cfg.YearSpan} {
		step(s.pipe.YearRange(ctx, state, c.YearRange[0], c.YearRange[1]))
	}
	if c.OmitIsolated {
		step(s.pipe.OmitIsolated(ctx, state, true))
	}

	s.state = state
	last := c
	s.last = &last

	payload := s.payload(notices)
	s.record(trigger, payload)
	log.Debugw("Controls applied",
		logger.FieldTrigger, trigger,
		"changed", sortedKeys(diff),
		logger.FieldNodes, payload.Stats.Nodes,
		logger.FieldEdges, payload.Stats.Edges,
		logger.FieldHidden, payload.Stats.HiddenNodes,
		"notices", len(notices))
	return payload, nil
}

// Controls returns the controls of the last interaction, or the defaults
func (s *Session) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return DefaultControls(s.pipe.Config())
	}
	return *s.last
}

// Legend returns the active color legends
func (s *Session) Legend() graph.Legend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.legend()
}

func (s *Session) legend() graph.Legend {
	return graph.Legend{
		Nodes: s.nodeMapping.Legend(),
		Edges: s.edgeMapping.Legend(),
	}
}

// payload builds the render payload from the current state, in base order
func (s *Session) payload(notices []grapherr.Notice) Payload {
	ds := s.pipe.Dataset()
	view := s.state.View.Shallow()
	sort.SliceStable(view.Nodes, func(i, j int) bool {
		return ds.NodeOrder(view.Nodes[i].ID()) < ds.NodeOrder(view.Nodes[j].ID())
	})
	sort.SliceStable(view.Edges, func(i, j int) bool {
		return ds.EdgeOrder(view.Edges[i].ID()) < ds.EdgeOrder(view.Edges[j].ID())
	})

	if notices == nil {
		notices = []grapherr.Notice{}
	}
	return Payload{
		Graph:   view,
		Legend:  s.legend(),
		Notices: notices,
		Stats:   view.Stats(),
	}
}

func (s *Session) record(trigger string, p Payload) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordInteraction(trigger, p.Stats.Nodes)
	for _, n := range p.Notices {
		s.metrics.RecordNotice(n.Category)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
