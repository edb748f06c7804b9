// Package app wires the application together: logger construction, loader
// configuration, and the top-level run flow from manifest path to rendered
// output, operation plan, or execution.
package app
