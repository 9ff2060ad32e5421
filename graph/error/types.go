package grapherror

import (
	"github.com/teranos/graphscope/errors"
)

// GraphError is a failure reported to the user without aborting the
// interaction that caused it. Pipeline stages return one alongside their
// fallback state and the payload carries it as a Notice.
type GraphError struct {
	Err         error          // cause, sent to the UI as notice detail
	Category    Category       // decides the notice level and default message
	Subcategory string         // optional finer grouping, used as a metric label
	Stage       string         // pipeline stage that raised it, empty outside the pipeline
	UserMessage string         // overrides the category's default message
	Context     map[string]any // extra structured log fields
}

// Error implements the error interface
func (e *GraphError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMessage
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *GraphError) Unwrap() error {
	return e.Err
}

// New creates a GraphError. An empty userMsg selects the category default.
func New(category Category, err error, userMsg string) *GraphError {
	return &GraphError{
		Err:         err,
		Category:    category,
		UserMessage: userMsg,
		Context:     make(map[string]any),
	}
}

// Newf creates a GraphError with a formatted cause
func Newf(category Category, userMsg, format string, args ...any) *GraphError {
	return New(category, errors.Newf(format, args...), userMsg)
}

// WithSubcategory sets the subcategory
func (e *GraphError) WithSubcategory(sub string) *GraphError {
	e.Subcategory = sub
	return e
}

// WithStage records the pipeline stage the error came from
func (e *GraphError) WithStage(stage string) *GraphError {
	e.Stage = stage
	return e
}

// WithContext adds a log field
func (e *GraphError) WithContext(key string, value any) *GraphError {
	e.Context[key] = value
	return e
}

// Level is the notice level. Failures scoped to one interaction (a bad filter,
// an unusable size attribute, an oversized palette) are warnings because the
// graph is still rendered; everything else is an error.
func (e *GraphError) Level() string {
	switch e.Category {
	case CategoryFilter, CategoryScaling, CategoryPalette:
		return LevelWarning
	}
	return LevelError
}
