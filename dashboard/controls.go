package dashboard

import (
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/teranos/graphscope/errors"
	"github.com/teranos/graphscope/graph"
	"github.com/teranos/graphscope/pipeline"
)

// Control names. They match the JSON field names and are what clients send
// as the trigger of an interaction.
const (
	ControlSearch        = "search"
	ControlOmitIsolated  = "omit_isolated"
	ControlOmitSelfLoops = "omit_self_loops"
	ControlEdgeTypes     = "edge_types"
	ControlRegions       = "regions"
	ControlNodeFilter    = "node_filter"
	ControlEdgeFilter    = "edge_filter"
	ControlColorNodes    = "color_nodes"
	ControlColorEdges    = "color_edges"
	ControlSizeNodes     = "size_nodes"
	ControlSizeEdges     = "size_edges"
	ControlYearRange     = "year_range"
)

// Controls is the value of every dashboard input at the time of an interaction
type Controls struct {
	Search        string   `json:"search" validate:"max=256"`
	OmitIsolated  bool     `json:"omit_isolated"`
	OmitSelfLoops bool     `json:"omit_self_loops"`
	EdgeTypes     []string `json:"edge_types" validate:"max=16,dive,max=64"`
	Regions       []string `json:"regions" validate:"max=8,dive,max=64"`
	NodeFilter    string   `json:"node_filter" validate:"max=2048"`
	EdgeFilter    string   `json:"edge_filter" validate:"max=2048"`
	ColorNodes    string   `json:"color_nodes" validate:"max=128"`
	ColorEdges    string   `json:"color_edges" validate:"max=128"`
	SizeNodes     string   `json:"size_nodes" validate:"max=128"`
	SizeEdges     string   `json:"size_edges" validate:"max=128"`
	YearRange     [2]int   `json:"year_range"`
}

// DefaultControls is the state of the inputs when the page loads
func DefaultControls(cfg pipeline.Config) Controls {
	return Controls{
		EdgeTypes:  slices.Clone(cfg.EdgeTypes),
		Regions:    cfg.RegionLabels(),
		ColorNodes: graph.NoneOption,
		ColorEdges: graph.NoneOption,
		SizeNodes:  graph.NoneOption,
		SizeEdges:  graph.NoneOption,
		YearRange:  [2]int{0, cfg.YearSpan},
	}
}

// changed lists the controls whose values differ between a and b
func changed(a, b Controls) map[string]bool {
	out := make(map[string]bool)
	mark := func(name string, differs bool) {
		if differs {
			out[name] = true
		}
	}
	mark(ControlSearch, a.Search != b.Search)
	mark(ControlOmitIsolated, a.OmitIsolated != b.OmitIsolated)
	mark(ControlOmitSelfLoops, a.OmitSelfLoops != b.OmitSelfLoops)
	mark(ControlEdgeTypes, !slices.Equal(a.EdgeTypes, b.EdgeTypes))
	mark(ControlRegions, !slices.Equal(a.Regions, b.Regions))
	mark(ControlNodeFilter, a.NodeFilter != b.NodeFilter)
	mark(ControlEdgeFilter, a.EdgeFilter != b.EdgeFilter)
	mark(ControlColorNodes, a.ColorNodes != b.ColorNodes)
	mark(ControlColorEdges, a.ColorEdges != b.ColorEdges)
	mark(ControlSizeNodes, a.SizeNodes != b.SizeNodes)
	mark(ControlSizeEdges, a.SizeEdges != b.SizeEdges)
	mark(ControlYearRange, a.YearRange != b.YearRange)
	return out
}

// KnownControl reports whether name is a valid trigger
func KnownControl(name string) bool {
	switch name {
	case ControlSearch, ControlOmitIsolated, ControlOmitSelfLoops, ControlEdgeTypes,
		ControlRegions, ControlNodeFilter, ControlEdgeFilter, ControlColorNodes,
		ControlColorEdges, ControlSizeNodes, ControlSizeEdges, ControlYearRange:
		return true
	}
	return false
}

// Validator checks Controls against the configured options
type Validator struct {
	validate *validator.Validate
	cfg      pipeline.Config
}

// NewValidator creates a validator for one pipeline configuration
func NewValidator(cfg pipeline.Config) *Validator {
	v := &Validator{validate: validator.New(), cfg: cfg}
	v.validate.RegisterStructValidation(v.structLevel, Controls{})
	return v
}

func (v *Validator) structLevel(sl validator.StructLevel) {
	c := sl.Current().Interface().(Controls)

	for _, t := range c.EdgeTypes {
		if !slices.Contains(v.cfg.EdgeTypes, t) {
			sl.ReportError(c.EdgeTypes, "EdgeTypes", "edge_types", "oneof", t)
			break
		}
	}
	for _, r := range c.Regions {
		if _, ok := v.cfg.Regions[r]; !ok {
			sl.ReportError(c.Regions, "Regions", "regions", "oneof", r)
			break
		}
	}
	lo, hi := c.YearRange[0], c.YearRange[1]
	if lo < 0 || hi > v.cfg.YearSpan || lo > hi {
		sl.ReportError(c.YearRange, "YearRange", "year_range", "range", "")
	}
}

// Validate returns an ErrInvalidRequest error describing the first bad field
func (v *Validator) Validate(c Controls) error {
	if err := v.validate.Struct(c); err != nil {
		return formatValidationError(err, v.cfg)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error, cfg pipeline.Config) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return errors.NewInvalidRequestError("%v", err)
	}

	for _, e := range validationErrs {
		field := e.Field()
		switch e.Tag() {
		case "max":
			return errors.NewInvalidRequestError("%s: must not exceed %s", field, e.Param())
		case "oneof":
			return errors.NewInvalidRequestError("%s: unknown option %q", field, e.Param())
		case "range":
			return errors.NewInvalidRequestError("%s: must satisfy 0 <= low <= high <= %d", field, cfg.YearSpan)
		default:
			return errors.NewInvalidRequestError("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return errors.NewInvalidRequestError("%v", err)
}
