// Package helpers provides the built-in helper functions available to
// template expressions, and a registry for plugging in additional ones.
package helpers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// DirResolver returns the local filesystem path materialized for a named
// repository reference. The lookup must be total-or-failing: a repository
// that was never resolved is an error, never an empty path.
type DirResolver interface {
	Dir(name string) (string, error)
}

// Registry holds the named helper functions exposed to the renderer.
type Registry struct {
	funcs map[string]function.Function
}

// New creates an empty helper registry.
func New() *Registry {
	return &Registry{funcs: make(map[string]function.Function)}
}

// Builtin returns a registry pre-populated with the core helpers: get_dir
// backed by the given resolver and which backed by the given search path.
func Builtin(resolver DirResolver, searchPath []string) *Registry {
	r := New()
	r.Register("get_dir", GetDir(resolver))
	r.Register("which", Which(searchPath))
	return r
}

// Register adds a helper under the given name. Registering the same name
// twice is a programmer error.
func (r *Registry) Register(name string, fn function.Function) {
	if _, exists := r.funcs[name]; exists {
		panic(fmt.Sprintf("helper function '%s' already registered", name))
	}
	slog.Debug("Registering helper function.", "name", name)
	r.funcs[name] = fn
}

// Functions returns a copy of the registered helpers, keyed by name.
func (r *Registry) Functions() map[string]function.Function {
	out := make(map[string]function.Function, len(r.funcs))
	for name, fn := range r.funcs {
		out[name] = fn
	}
	return out
}

// GetDir builds the get_dir helper: get_dir(repository) -> local path.
func GetDir(resolver DirResolver) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "repository", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			dir, err := resolver.Dir(name)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(dir), nil
		},
	})
}

// Which builds the which helper: which(executable) -> absolute path. The
// executable is looked up on the provided search path, or on $PATH when the
// search path is nil. A missing executable fails the render.
func Which(searchPath []string) function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{Name: "executable", Type: cty.String},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			name := args[0].AsString()
			path, err := LookPath(name, searchPath)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(path), nil
		},
	})
}

// LookPath finds an executable on the search path. Unlike exec.LookPath it
// accepts an explicit path list so tests and callers can sandbox lookups.
func LookPath(name string, searchPath []string) (string, error) {
	if searchPath == nil {
		searchPath = filepath.SplitList(os.Getenv("PATH"))
	}

	if filepath.IsAbs(name) {
		if isExecutable(name) {
			return name, nil
		}
		return "", fmt.Errorf("executable '%s' not found", name)
	}

	for _, dir := range searchPath {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if isExecutable(candidate) {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", fmt.Errorf("executable '%s' not found on search path", name)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
