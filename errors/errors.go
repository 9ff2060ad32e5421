// Package errors provides error handling for graphscope.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints attached to errors
//
// Usage:
//
//	if err := loadEdges(path); err != nil {
//	    return errors.Wrapf(err, "failed to load edges from %s", path)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "the edge table needs 'from' and 'to' columns")
//
//	// Check errors
//	if errors.Is(err, errors.ErrSchema) {
//	    // abort startup
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for the dataset and filter pipeline.
// Wrap these with errors.Wrap() or errors.Mark() to add context while preserving the type.
var (
	// ErrSchema indicates an input table is missing a required column
	ErrSchema = New("schema error")

	// ErrFilterEvaluation indicates a filter stage could not evaluate its control value
	// (malformed expression, unknown attribute, type mismatch)
	ErrFilterEvaluation = New("filter evaluation error")

	// ErrScalingUndefined indicates a sizing attribute has no usable range (max == min or not numeric)
	ErrScalingUndefined = New("scaling undefined")

	// ErrInsufficientPalette indicates more distinct categorical values than palette colors
	ErrInsufficientPalette = New("insufficient palette")

	// ErrInvalidRequest indicates a client message was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// IsSchemaError checks if an error is or wraps ErrSchema
func IsSchemaError(err error) bool {
	return err != nil && Is(err, ErrSchema)
}

// IsFilterEvaluationError checks if an error is or wraps ErrFilterEvaluation
func IsFilterEvaluationError(err error) bool {
	return err != nil && Is(err, ErrFilterEvaluation)
}

// NewSchemaError creates a schema error with a formatted message
func NewSchemaError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrSchema)
}

// NewFilterError creates a filter evaluation error with a formatted message
func NewFilterError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrFilterEvaluation)
}

// WrapFilterError marks err as a filter evaluation error and adds context
func WrapFilterError(err error, context string) error {
	return Mark(Wrap(err, context), ErrFilterEvaluation)
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrInvalidRequest)
}
