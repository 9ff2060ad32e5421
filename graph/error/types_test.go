package grapherror

import (
	"errors"
	"testing"

	gserrors "github.com/teranos/graphscope/errors"
)

func TestGraphError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "returns underlying error message when Err is not nil",
			err: &GraphError{
				Err:         errors.New("unknown attribute \"Cuntry\""),
				UserMessage: "Node filter failed",
			},
			want: "unknown attribute \"Cuntry\"",
		},
		{
			name: "returns UserMessage when Err is nil",
			err: &GraphError{
				UserMessage: "Node filter failed",
			},
			want: "Node filter failed",
		},
		{
			name: "returns empty string when both Err and UserMessage are empty",
			err:  &GraphError{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.want {
				t.Errorf("GraphError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphError_Unwrap(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := &GraphError{Err: underlyingErr}

	if got := err.Unwrap(); got != underlyingErr {
		t.Errorf("GraphError.Unwrap() = %v, want %v", got, underlyingErr)
	}

	errNil := &GraphError{}
	if got := errNil.Unwrap(); got != nil {
		t.Errorf("GraphError.Unwrap() with nil Err = %v, want nil", got)
	}
}

func TestGraphError_IsSentinel(t *testing.T) {
	err := New(CategoryFilter, gserrors.NewFilterError("bad token"), "")

	if !gserrors.Is(err, gserrors.ErrFilterEvaluation) {
		t.Error("errors.Is(GraphError, ErrFilterEvaluation) should be true")
	}
	if gserrors.Is(err, gserrors.ErrSchema) {
		t.Error("errors.Is(GraphError, ErrSchema) should be false")
	}

	empty := New(CategoryFilter, nil, "no cause")
	if gserrors.Is(empty, gserrors.ErrFilterEvaluation) {
		t.Error("GraphError without Err should not match sentinels")
	}
}

func TestNew(t *testing.T) {
	underlyingErr := errors.New("connection failed")
	err := New(CategoryWebSocket, underlyingErr, "Connection lost")

	if err.Err != underlyingErr {
		t.Errorf("New().Err = %v, want %v", err.Err, underlyingErr)
	}
	if err.Category != CategoryWebSocket {
		t.Errorf("New().Category = %v, want %v", err.Category, CategoryWebSocket)
	}
	if err.UserMessage != "Connection lost" {
		t.Errorf("New().UserMessage = %q, want %q", err.UserMessage, "Connection lost")
	}
	if err.Context == nil || len(err.Context) != 0 {
		t.Errorf("New().Context should be empty and initialized, got %v", err.Context)
	}
	if err.Stage != "" {
		t.Errorf("New().Stage = %q, want empty", err.Stage)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryScaling, "Cannot size by degree", "attribute %q has max == min (%v)", "degree", 3)

	if err.Category != CategoryScaling {
		t.Errorf("Newf().Category = %v, want %v", err.Category, CategoryScaling)
	}
	if err.Err == nil {
		t.Fatal("Newf().Err should not be nil")
	}
	want := `attribute "degree" has max == min (3)`
	if err.Err.Error() != want {
		t.Errorf("Newf().Err.Error() = %q, want %q", err.Err.Error(), want)
	}
}

func TestGraphError_MethodChaining(t *testing.T) {
	err := New(CategoryFilter, errors.New("parse"), "Edge filter failed").
		WithSubcategory(SubcategoryFilterInvalidSyntax).
		WithStage("edge_query").
		WithContext("expression", "year-factor >").
		WithContext("edges", 12)

	if err.Subcategory != SubcategoryFilterInvalidSyntax {
		t.Errorf("Chained Subcategory = %q, want %q", err.Subcategory, SubcategoryFilterInvalidSyntax)
	}
	if err.Stage != "edge_query" {
		t.Errorf("Chained Stage = %q, want %q", err.Stage, "edge_query")
	}
	if len(err.Context) != 2 {
		t.Errorf("Chained Context has %d items, want 2", len(err.Context))
	}
	if err.Context["edges"] != 12 {
		t.Errorf("Chained Context[edges] = %v, want 12", err.Context["edges"])
	}
}

func TestGraphError_Level(t *testing.T) {
	tests := []struct {
		category Category
		want     string
	}{
		{CategoryFilter, LevelWarning},
		{CategoryScaling, LevelWarning},
		{CategoryPalette, LevelWarning},
		{CategorySchema, LevelError},
		{CategoryWebSocket, LevelError},
		{CategoryInternal, LevelError},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := New(tt.category, nil, "").Level(); got != tt.want {
				t.Errorf("Level() = %q, want %q", got, tt.want)
			}
		})
	}
}
