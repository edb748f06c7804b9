package render

import "fmt"

// UnresolvedReferenceError reports an expression that references a variable
// or helper function the context does not supply.
type UnresolvedReferenceError struct {
	Symbol     string
	Expression string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("unresolved reference '%s' in expression '%s'", e.Symbol, e.Expression)
}

// ParseError reports a malformed template: bad delimiters, an unterminated
// expression, or an expression that does not parse.
type ParseError struct {
	Detail     string
	Expression string
}

func (e *ParseError) Error() string {
	if e.Expression == "" {
		return fmt.Sprintf("template parse error: %s", e.Detail)
	}
	return fmt.Sprintf("template parse error in expression '%s': %s", e.Expression, e.Detail)
}

// EvalError reports an expression that parsed but failed to evaluate, for
// example a helper function that returned an error.
type EvalError struct {
	Expression string
	Err        error
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("failed to evaluate expression '%s': %v", e.Expression, e.Err)
}

func (e *EvalError) Unwrap() error { return e.Err }
