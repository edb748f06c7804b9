package registry

import (
	"sort"

	"github.com/mehak151/unfurl/internal/config"
)

// ValidateDefaults checks that no role carries more than one default-tagged
// template. It runs after all templates are registered, before any instance
// is bound, so a misconfigured document fails even when nothing requests
// the ambiguous role.
func (r *Registry) ValidateDefaults() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byRole := make(map[string][]string)
	for _, name := range r.order {
		tmpl := r.templates[name]
		if tmpl.IsDefault() {
			byRole[tmpl.Type] = append(byRole[tmpl.Type], name)
		}
	}

	// Report the lexically first ambiguous role so the error is stable
	// under declaration order randomization.
	roles := make([]string, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	for _, role := range roles {
		if candidates := byRole[role]; len(candidates) > 1 {
			sort.Strings(candidates)
			return &AmbiguousDefaultError{Role: role, Candidates: candidates}
		}
	}
	return nil
}

// ResolveRole finds the template serving a role for the named instance:
// the single default-tagged template whose type matches. Zero candidates is
// a MissingTemplateError; more than one is an AmbiguousDefaultError.
func (r *Registry) ResolveRole(instance, role string) (*config.NodeTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matches []*config.NodeTemplate
	for _, name := range r.order {
		tmpl := r.templates[name]
		if tmpl.Type == role && tmpl.IsDefault() {
			matches = append(matches, tmpl)
		}
	}

	switch len(matches) {
	case 0:
		return nil, &MissingTemplateError{Instance: instance, Role: role}
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		sort.Strings(names)
		return nil, &AmbiguousDefaultError{Role: role, Candidates: names}
	}
}

// ResolveTemplate finds the explicitly named template for an instance.
func (r *Registry) ResolveTemplate(instance, name string) (*config.NodeTemplate, error) {
	if tmpl, ok := r.Lookup(name); ok {
		return tmpl, nil
	}
	return nil, &MissingTemplateError{Instance: instance, Name: name}
}
