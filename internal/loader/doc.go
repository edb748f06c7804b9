// Package loader implements the model loader: the staged pipeline that
// turns ensemble document text into a Ready model and an ordered list of
// lifecycle operations.
//
// The pipeline is a linear state machine
//
//	Unparsed -> Parsed -> ReferencesResolved -> TemplatesRegistered ->
//	DefaultsResolved -> InstancesBound -> Ready
//
// with cancellation checked at every transition. Structural errors
// (duplicate templates, ambiguous defaults, unresolved references) are
// fatal immediately; only repository fetches are retried. Callers receive
// either a fully Ready model or a terminal error annotated with the last
// state that completed; no partially built model ever escapes.
package loader
