// Package config defines the format-agnostic model of a loaded ensemble,
// along with the Loader interface implemented by format-specific frontends.
//
// The config.Model is the single source of truth for everything downstream
// of loading: the registry, the operation planner, and the runner all work
// from it. Concrete document formats (the YAML ensemble frontend lives in
// the ensemble package) translate their wire schema into this model.
package config
