// Package query evaluates the boolean filter expressions users type into the
// node and edge filter boxes.
//
// Expressions use comparisons, and/or/not, parentheses, attribute references and
// literals:
//
//	Country == "Kenya" and degree > 5
//	edgetype != 'HCHC' or not (`year-factor` < 2010)
//
// Parsing is delegated to the HCL expression syntax, restricted to an
// allow-list of node types. Attributes are bound as variables; no functions
// are available, so an expression can only read the entity it is evaluated on.
package query

import (
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/teranos/graphscope/errors"
)

// Errors returned by Compile and Eval. Every one of them also matches
// errors.ErrFilterEvaluation.
var (
	ErrSyntax           = errors.New("invalid expression syntax")
	ErrUnsupported      = errors.New("unsupported expression construct")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrTypeMismatch     = errors.New("type mismatch")
	ErrNotBoolean       = errors.New("expression is not boolean")
)

// Expr is a compiled filter expression
type Expr struct {
	src     string
	expr    hclsyntax.Expression
	aliases map[string]string // generated identifier -> attribute name
	refs    []string          // root variable names as they appear in expr
}

// Compile parses and checks a filter expression
func Compile(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, mark(errors.New("expression is empty"), ErrSyntax)
	}

	quoted, aliases, err := quotePass(src)
	if err != nil {
		return nil, mark(err, ErrSyntax)
	}
	rewritten, err := keywordPass(quoted)
	if err != nil {
		return nil, mark(err, ErrSyntax)
	}

	expr, diags := hclsyntax.ParseExpression([]byte(rewritten), "filter", hcl.Pos{Line: 1, Column: 1, Byte: 0})
	if diags.HasErrors() {
		return nil, mark(diagnosticsError(diags), ErrSyntax)
	}
	if err := checkAllowed(expr); err != nil {
		return nil, mark(err, ErrUnsupported)
	}

	seen := make(map[string]bool)
	var refs []string
	for _, t := range expr.Variables() {
		root := t.RootName()
		if !seen[root] {
			seen[root] = true
			refs = append(refs, root)
		}
	}
	sort.Strings(refs)

	return &Expr{src: src, expr: expr, aliases: aliases, refs: refs}, nil
}

// String returns the expression as the user wrote it
func (e *Expr) String() string {
	return e.src
}

// Attributes returns the attribute names the expression reads, sorted
func (e *Expr) Attributes() []string {
	out := make([]string, len(e.refs))
	for i, ref := range e.refs {
		out[i] = e.attrName(ref)
	}
	sort.Strings(out)
	return out
}

func (e *Expr) attrName(ref string) string {
	if name, ok := e.aliases[ref]; ok {
		return name
	}
	return ref
}

// Eval evaluates the expression against one entity's attributes.
// A comparison that fails only because an operand is null counts as false,
// the same as a missing cell never matching. Failures anywhere else in the
// expression are still reported.
func (e *Expr) Eval(attrs map[string]any) (bool, error) {
	vars := make(map[string]cty.Value, len(e.refs))
	nullRefs := make(map[string]bool)
	for _, ref := range e.refs {
		name := e.attrName(ref)
		v, ok := attrs[name]
		if !ok {
			return false, UnknownAttribute(name)
		}
		cv := toCty(v)
		if cv.IsNull() {
			nullRefs[ref] = true
		}
		vars[ref] = cv
	}

	var nulls []hcl.Range
	if len(nullRefs) > 0 {
		for _, t := range e.expr.Variables() {
			if nullRefs[t.RootName()] {
				nulls = append(nulls, t.SourceRange())
			}
		}
	}

	val, diags := e.expr.Value(&hcl.EvalContext{Variables: vars})
	if diags = withoutNullOperands(diags, nulls); diags.HasErrors() {
		return false, mark(diagnosticsError(diags), ErrTypeMismatch)
	}

	if val.IsNull() || !val.IsKnown() {
		if len(nulls) > 0 {
			return false, nil
		}
		return false, mark(errors.New("expression produced no value"), ErrNotBoolean)
	}
	if !val.Type().Equals(cty.Bool) {
		return false, mark(errors.Newf("expression produced %s, want bool", val.Type().FriendlyName()), ErrNotBoolean)
	}
	return val.True(), nil
}

// withoutNullOperands drops the diagnostics raised on a subexpression that
// reads a null attribute
func withoutNullOperands(diags hcl.Diagnostics, nulls []hcl.Range) hcl.Diagnostics {
	if len(nulls) == 0 {
		return diags
	}
	var kept hcl.Diagnostics
	for _, d := range diags {
		if d.Subject != nil && coversAny(*d.Subject, nulls) {
			continue
		}
		kept = append(kept, d)
	}
	return kept
}

func coversAny(subject hcl.Range, ranges []hcl.Range) bool {
	for _, r := range ranges {
		if subject.Start.Byte <= r.Start.Byte && r.End.Byte <= subject.End.Byte {
			return true
		}
	}
	return false
}

// checkAllowed rejects every syntax node outside the filter grammar:
// function calls, for-expressions, conditionals, splats, collections,
// template interpolation and indexing.
func checkAllowed(expr hclsyntax.Expression) error {
	switch x := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return nil
	case *hclsyntax.ScopeTraversalExpr:
		for _, step := range x.Traversal[1:] {
			if _, ok := step.(hcl.TraverseAttr); !ok {
				return errors.Newf("indexing %q is not supported", x.Traversal.RootName())
			}
		}
		return nil
	case *hclsyntax.TemplateExpr:
		for _, part := range x.Parts {
			if _, ok := part.(*hclsyntax.LiteralValueExpr); !ok {
				return errors.New("string interpolation is not supported")
			}
		}
		return nil
	case *hclsyntax.BinaryOpExpr:
		if err := checkAllowed(x.LHS); err != nil {
			return err
		}
		return checkAllowed(x.RHS)
	case *hclsyntax.UnaryOpExpr:
		return checkAllowed(x.Val)
	case *hclsyntax.ParenthesesExpr:
		return checkAllowed(x.Expression)
	case *hclsyntax.FunctionCallExpr:
		return errors.Newf("function %s() is not available", x.Name)
	case *hclsyntax.ConditionalExpr:
		return errors.New("conditional expressions are not supported")
	case *hclsyntax.TupleConsExpr, *hclsyntax.ObjectConsExpr, *hclsyntax.ForExpr:
		return errors.New("collections are not supported")
	default:
		return errors.Newf("expression form %T is not supported", expr)
	}
}

// UnknownAttribute returns the error reported for a name no entity carries
func UnknownAttribute(name string) error {
	return mark(errors.Newf("unknown attribute %q", name), ErrUnknownAttribute)
}

func mark(err, kind error) error {
	return errors.Mark(errors.Mark(err, kind), errors.ErrFilterEvaluation)
}
