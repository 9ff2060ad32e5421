package graph

// Attribute keys with fixed meaning on nodes and edges
const (
	KeyID        = "id"
	KeyLabel     = "label"
	KeyShape     = "shape"
	KeySize      = "size"
	KeyColor     = "color"
	KeyHidden    = "hidden"
	KeyTitle     = "title"
	KeyComposite = "idd" // composite id used by search
	KeyFrom      = "from"
	KeyTo        = "to"
	KeyWidth     = "width"

	KeySelfReferenceSize = "selfReferenceSize"
)

// Node shapes
const (
	ShapeDot    = "dot"
	ShapeSquare = "square"
)

const (
	DefaultColor    = "#97C2FC"
	DefaultNodeSize = 7.0
	DefaultEdgeSize = 1.0

	// Categorical attributes with more distinct values than this are not offered for coloring
	MaxCategoricalValues = 100
)

const (
	edgeIDSeparator        = "__" // from__to/discriminant
	compositeEdgeSeparator = "--" // fromIdd--toIdd/discriminant
	discriminantSeparator  = "/"
	compositeNodeSeparator = ":" // Country:City:id

	tooltipBreak         = "<br>"
	tooltipWrapWidth     = 80 // columns
	tooltipWrapMinItems  = 8  // comma-separated items before wrapping kicks in
	selfReferenceLogBase = 1.2
	selfReferenceStep    = 0.2
)
