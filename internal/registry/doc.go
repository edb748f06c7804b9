// Package registry holds the node-template registry built during loading
// and implements default-directive resolution.
//
// Registration follows a single-writer discipline: the registry serializes
// writes behind a mutex so that templates parsed from concurrently fetched
// imports can be merged safely, and each template name is registered
// exactly once.
//
// Role resolution is a priority lookup, not inheritance: an explicit
// template binding always wins; otherwise exactly one default-tagged
// template for the role is required, and zero or multiple candidates are
// configuration errors.
package registry
