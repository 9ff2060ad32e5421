package grapherror

// Category represents the main error category for graph operations
type Category string

const (
	// CategorySchema indicates an input table is missing required columns
	CategorySchema Category = "schema"

	// CategoryFilter indicates a filter stage failed and fell back to the base view
	CategoryFilter Category = "filter"

	// CategoryScaling indicates a sizing attribute has no usable range
	CategoryScaling Category = "scaling"

	// CategoryPalette indicates more categories than palette colors
	CategoryPalette Category = "palette"

	// CategoryWebSocket indicates WebSocket connection/communication errors
	CategoryWebSocket Category = "websocket"

	// CategoryInternal indicates internal server errors
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Schema Subcategories
const (
	// SubcategorySchemaMissingColumn indicates a required column is absent
	SubcategorySchemaMissingColumn = "missing_column"

	// SubcategorySchemaEmpty indicates the edge table has no rows
	SubcategorySchemaEmpty = "empty"
)

// Filter Subcategories
const (
	// SubcategoryFilterInvalidSyntax indicates the query expression could not be parsed
	SubcategoryFilterInvalidSyntax = "invalid_syntax"

	// SubcategoryFilterUnknownAttribute indicates a reference to an attribute that does not exist
	SubcategoryFilterUnknownAttribute = "unknown_attribute"

	// SubcategoryFilterTypeMismatch indicates operands of incompatible types
	SubcategoryFilterTypeMismatch = "type_mismatch"

	// SubcategoryFilterNotBoolean indicates the expression did not produce true/false
	SubcategoryFilterNotBoolean = "not_boolean"

	// SubcategoryFilterInvalidValue indicates a control value the stage cannot use
	SubcategoryFilterInvalidValue = "invalid_value"
)

// Scaling Subcategories
const (
	// SubcategoryScalingFlatRange indicates max == min over the base dataset
	SubcategoryScalingFlatRange = "flat_range"

	// SubcategoryScalingNotNumeric indicates the attribute is missing or non-numeric
	SubcategoryScalingNotNumeric = "not_numeric"
)

// WebSocket Subcategories
const (
	// SubcategoryWSRead indicates error reading from WebSocket
	SubcategoryWSRead = "read"

	// SubcategoryWSWrite indicates error writing to WebSocket
	SubcategoryWSWrite = "write"

	// SubcategoryWSUpgrade indicates WebSocket upgrade failed
	SubcategoryWSUpgrade = "upgrade"

	// SubcategoryWSMessage indicates a malformed client message
	SubcategoryWSMessage = "message"
)

// Internal Subcategories
const (
	// SubcategoryInternalPanic indicates a panic was recovered
	SubcategoryInternalPanic = "panic"

	// SubcategoryInternalConfig indicates configuration error
	SubcategoryInternalConfig = "config"
)
