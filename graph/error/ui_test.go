package grapherror

import (
	"errors"
	"testing"
)

func TestGraphError_ToUIMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *GraphError
		want string
	}{
		{
			name: "returns custom UserMessage when set",
			err: &GraphError{
				Category:    CategoryFilter,
				UserMessage: "Node filter has a syntax error",
			},
			want: "Node filter has a syntax error",
		},
		{
			name: "returns default message for CategoryFilter",
			err:  &GraphError{Category: CategoryFilter},
			want: "Filter could not be applied - showing the full graph instead",
		},
		{
			name: "returns default message for CategoryScaling",
			err:  &GraphError{Category: CategoryScaling},
			want: "This attribute cannot be used for sizing - sizes left unchanged",
		},
		{
			name: "returns default message for CategorySchema",
			err:  &GraphError{Category: CategorySchema},
			want: "The input data is missing required columns",
		},
		{
			name: "returns generic message for unknown category",
			err:  &GraphError{Category: Category("unknown")},
			want: "An error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.ToUIMessage()
			if got != tt.want {
				t.Errorf("ToUIMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraphError_ToNotice(t *testing.T) {
	tests := []struct {
		name      string
		err       *GraphError
		wantLevel string
		wantStage string
	}{
		{
			name: "filter errors are warnings",
			err: New(CategoryFilter, errors.New("unknown attribute"), "").
				WithSubcategory(SubcategoryFilterUnknownAttribute).
				WithStage("node_query"),
			wantLevel: LevelWarning,
			wantStage: "node_query",
		},
		{
			name:      "scaling errors are warnings",
			err:       New(CategoryScaling, errors.New("max == min"), ""),
			wantLevel: LevelWarning,
		},
		{
			name:      "internal errors are errors",
			err:       New(CategoryInternal, errors.New("boom"), ""),
			wantLevel: LevelError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.err.ToNotice()
			if n.Level != tt.wantLevel {
				t.Errorf("ToNotice().Level = %q, want %q", n.Level, tt.wantLevel)
			}
			if n.Stage != tt.wantStage {
				t.Errorf("ToNotice().Stage = %q, want %q", n.Stage, tt.wantStage)
			}
			if n.Category != string(tt.err.Category) {
				t.Errorf("ToNotice().Category = %q, want %q", n.Category, tt.err.Category)
			}
			if n.Detail != tt.err.Err.Error() {
				t.Errorf("ToNotice().Detail = %q, want %q", n.Detail, tt.err.Err.Error())
			}
			if n.Message != tt.err.ToUIMessage() {
				t.Errorf("ToNotice().Message = %q, want %q", n.Message, tt.err.ToUIMessage())
			}
		})
	}
}

func TestGraphError_ToNotice_NilErr(t *testing.T) {
	n := New(CategoryPalette, nil, "Too many values").ToNotice()
	if n.Detail != "" {
		t.Errorf("ToNotice().Detail = %q, want empty", n.Detail)
	}
	if n.Message != "Too many values" {
		t.Errorf("ToNotice().Message = %q, want %q", n.Message, "Too many values")
	}
}

func TestGraphError_ToLogFields(t *testing.T) {
	err := New(CategoryFilter, errors.New("bad expression"), "Node filter failed").
		WithSubcategory(SubcategoryFilterInvalidSyntax).
		WithContext("expression", "Country ==")

	fields := err.ToLogFields()
	if len(fields)%2 != 0 {
		t.Fatalf("ToLogFields() returned odd number of items: %d", len(fields))
	}

	got := make(map[string]interface{})
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			t.Fatalf("ToLogFields() key at %d is %T, want string", i, fields[i])
		}
		got[key] = fields[i+1]
	}

	if got["error_category"] != CategoryFilter {
		t.Errorf("error_category = %v, want %v", got["error_category"], CategoryFilter)
	}
	if got["error_message"] != "bad expression" {
		t.Errorf("error_message = %v, want %q", got["error_message"], "bad expression")
	}
	if got["error_subcategory"] != SubcategoryFilterInvalidSyntax {
		t.Errorf("error_subcategory = %v, want %q", got["error_subcategory"], SubcategoryFilterInvalidSyntax)
	}
	if got["expression"] != "Country ==" {
		t.Errorf("expression = %v, want %q", got["expression"], "Country ==")
	}
}

func TestGraphError_ToLogFields_NoSubcategory(t *testing.T) {
	fields := New(CategoryInternal, errors.New("x"), "").ToLogFields()
	for i := 0; i < len(fields); i += 2 {
		if fields[i] == "error_subcategory" {
			t.Error("ToLogFields() should omit error_subcategory when unset")
		}
	}
}
