package registry

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mehak151/unfurl/internal/config"
)

// DuplicateTemplateError reports two node templates registered under the
// same name.
type DuplicateTemplateError struct {
	Name string
}

func (e *DuplicateTemplateError) Error() string {
	return fmt.Sprintf("duplicate node template '%s'", e.Name)
}

// AmbiguousDefaultError reports more than one default-tagged template for
// the same role. Candidates are sorted so the message is deterministic
// regardless of declaration order.
type AmbiguousDefaultError struct {
	Role       string
	Candidates []string
}

func (e *AmbiguousDefaultError) Error() string {
	return fmt.Sprintf("ambiguous default for role '%s': templates %s", e.Role, strings.Join(e.Candidates, ", "))
}

// MissingTemplateError reports an instance whose template binding or role
// request cannot be satisfied.
type MissingTemplateError struct {
	Instance string
	Name     string
	Role     string
}

func (e *MissingTemplateError) Error() string {
	if e.Role != "" {
		return fmt.Sprintf("instance '%s' requests role '%s' but no template serves it", e.Instance, e.Role)
	}
	return fmt.Sprintf("instance '%s' references unknown template '%s'", e.Instance, e.Name)
}

// Registry is the node-template registry keyed by template name.
type Registry struct {
	mu        sync.Mutex
	templates map[string]*config.NodeTemplate
	order     []string
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		templates: make(map[string]*config.NodeTemplate),
	}
}

// Add registers a template under its name. A second template with the same
// name is a DuplicateTemplateError.
func (r *Registry) Add(tmpl *config.NodeTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.templates[tmpl.Name]; exists {
		return &DuplicateTemplateError{Name: tmpl.Name}
	}
	r.templates[tmpl.Name] = tmpl
	r.order = append(r.order, tmpl.Name)
	return nil
}

// Lookup returns the template registered under name.
func (r *Registry) Lookup(name string) (*config.NodeTemplate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tmpl, ok := r.templates[name]
	return tmpl, ok
}

// Templates returns all registered templates in registration order.
func (r *Registry) Templates() []*config.NodeTemplate {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*config.NodeTemplate, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.templates[name])
	}
	return out
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.templates)
}
