// Package ensemble is the YAML frontend for ensemble manifests: it parses
// rendered document text into the wire schema and translates that schema
// into the format-agnostic config model.
package ensemble
