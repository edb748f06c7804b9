package render

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
)

// Delimiters is the start/end token pair that brackets an embedded
// expression.
type Delimiters struct {
	Start string
	End   string
}

// DefaultDelimiters is the delimiter pair used by ensemble documents.
var DefaultDelimiters = Delimiters{Start: "[%", End: "%]"}

func (d Delimiters) validate() error {
	if d.Start == "" || d.End == "" {
		return &ParseError{Detail: "delimiters must be non-empty"}
	}
	if d.Start == d.End {
		return &ParseError{Detail: fmt.Sprintf("start and end delimiters must be distinct, both are '%s'", d.Start)}
	}
	return nil
}

// Context supplies the named values and helper functions an expression may
// reference. Helpers are pure functions; they may perform non-mutating
// filesystem lookups but retain no state between calls.
type Context struct {
	Variables map[string]cty.Value
	Functions map[string]function.Function
}

// NewContext returns an empty rendering context.
func NewContext() *Context {
	return &Context{
		Variables: make(map[string]cty.Value),
		Functions: make(map[string]function.Function),
	}
}

// Engine renders template text for one fixed delimiter configuration.
type Engine struct {
	delims Delimiters
}

// NewEngine validates the delimiter pair and returns a renderer for it.
func NewEngine(delims Delimiters) (*Engine, error) {
	if err := delims.validate(); err != nil {
		return nil, err
	}
	return &Engine{delims: delims}, nil
}

// Render substitutes every delimited expression in text with its evaluated
// value. Rendering succeeds fully or not at all: on any error the returned
// string is empty. Text without delimiters is returned unchanged, which
// makes rendering idempotent on its own output.
func (e *Engine) Render(text string, rctx *Context) (string, error) {
	if rctx == nil {
		rctx = NewContext()
	}

	var out strings.Builder
	rest := text
	for {
		i := strings.Index(rest, e.delims.Start)
		if i < 0 {
			out.WriteString(rest)
			break
		}
		out.WriteString(rest[:i])
		rest = rest[i+len(e.delims.Start):]

		j := strings.Index(rest, e.delims.End)
		if j < 0 {
			return "", &ParseError{Detail: fmt.Sprintf("unterminated expression, missing '%s'", e.delims.End)}
		}
		raw := strings.TrimSpace(rest[:j])
		rest = rest[j+len(e.delims.End):]

		value, err := e.eval(raw, rctx)
		if err != nil {
			return "", err
		}
		out.WriteString(value)
	}
	return out.String(), nil
}

// eval parses and evaluates a single expression against the context.
func (e *Engine) eval(raw string, rctx *Context) (string, error) {
	rewritten, err := rewriteFilters(raw)
	if err != nil {
		return "", err
	}

	expr, diags := hclsyntax.ParseExpression([]byte(rewritten), "<template>", hcl.InitialPos)
	if diags.HasErrors() {
		return "", &ParseError{Expression: raw, Detail: diags.Error()}
	}

	if err := checkReferences(expr, raw, rctx); err != nil {
		return "", err
	}

	evalCtx := &hcl.EvalContext{
		Variables: rctx.Variables,
		Functions: rctx.Functions,
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", &EvalError{Expression: raw, Err: diags}
	}

	strVal, convErr := convert.Convert(val, cty.String)
	if convErr != nil {
		return "", &EvalError{Expression: raw, Err: convErr}
	}
	if strVal.IsNull() {
		return "", &EvalError{Expression: raw, Err: fmt.Errorf("expression produced a null value")}
	}
	return strVal.AsString(), nil
}

// checkReferences rejects expressions referencing symbols the context does
// not supply, so failures name the missing symbol instead of surfacing as
// an opaque evaluation diagnostic.
func checkReferences(expr hclsyntax.Expression, raw string, rctx *Context) error {
	for _, traversal := range expr.Variables() {
		name := traversal.RootName()
		if _, ok := rctx.Variables[name]; !ok {
			return &UnresolvedReferenceError{Symbol: name, Expression: raw}
		}
	}

	var missing error
	diags := hclsyntax.VisitAll(expr, func(node hclsyntax.Node) hcl.Diagnostics {
		if missing != nil {
			return nil
		}
		if call, ok := node.(*hclsyntax.FunctionCallExpr); ok {
			if _, found := rctx.Functions[call.Name]; !found {
				missing = &UnresolvedReferenceError{Symbol: call.Name, Expression: raw}
			}
		}
		return nil
	})
	if missing != nil {
		return missing
	}
	if diags.HasErrors() {
		return &ParseError{Expression: raw, Detail: diags.Error()}
	}
	return nil
}
