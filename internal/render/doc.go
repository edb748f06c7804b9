// Package render implements the template renderer: it substitutes
// delimited expressions embedded in a text document with values computed
// from a caller-supplied context of variables and helper functions.
//
// Expressions use HCL syntax, extended with a pipe form familiar from
// template filters: `"asdf" | get_dir` is rewritten to `get_dir("asdf")`
// before parsing. Rendering is deterministic and all-or-nothing; a failed
// render never produces partial output.
package render
