package ensemble

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/mehak151/unfurl/internal/config"
	"github.com/mehak151/unfurl/internal/schema"
)

// TranslateTemplates converts wire templates into model templates,
// preserving declaration order. Duplicate names pass through; the registry
// is responsible for rejecting them.
func TranslateTemplates(list schema.TemplateList) ([]*config.NodeTemplate, error) {
	out := make([]*config.NodeTemplate, 0, len(list))
	for _, named := range list {
		tmpl, err := translateTemplate(named.Name, named.Template)
		if err != nil {
			return nil, err
		}
		out = append(out, tmpl)
	}
	return out, nil
}

func translateTemplate(name string, wire schema.NodeTemplate) (*config.NodeTemplate, error) {
	if wire.Type == "" {
		return nil, fmt.Errorf("node template '%s' declares no type", name)
	}

	tmpl := &config.NodeTemplate{
		Name:       name,
		Type:       wire.Type,
		Directives: wire.Directives,
	}

	for _, iface := range wire.Interfaces {
		modelIface := &config.Interface{Name: iface.Name}
		for _, op := range iface.Operations {
			step, err := translateStep(name, iface.Name, op.Name, op.Step)
			if err != nil {
				return nil, err
			}
			modelIface.Operations = append(modelIface.Operations, &config.OperationDef{
				Name: op.Name,
				Step: step,
			})
		}
		tmpl.Interfaces = append(tmpl.Interfaces, modelIface)
	}

	for _, req := range wire.Requirements {
		tmpl.Requirements = append(tmpl.Requirements, &config.Requirement{
			Name: req.Name,
			Node: req.Node,
		})
	}
	return tmpl, nil
}

// translateStep converts a wire step, decoding its option bag. Options
// outside the recognized set are tolerated, matching the permissive input
// handling of operation inputs in general.
func translateStep(tmplName, iface, op string, wire schema.Step) (*config.Step, error) {
	step := &config.Step{}
	switch {
	case wire.File != "":
		step.Implementation = wire.File
		step.File = true
	case wire.Implementation != "":
		step.Implementation = wire.Implementation
	default:
		return nil, fmt.Errorf("operation '%s.%s' of template '%s' has no implementation", iface, op, tmplName)
	}

	if len(wire.Inputs) > 0 {
		if err := mapstructure.Decode(wire.Inputs, &step.Options); err != nil {
			return nil, fmt.Errorf("failed to decode inputs of operation '%s.%s' of template '%s': %w", iface, op, tmplName, err)
		}
	}
	return step, nil
}

// TranslateInstances converts wire instances into model instances in
// declaration order. Binding and readyState validation happen later in the
// load pipeline.
func TranslateInstances(list schema.InstanceList) ([]*config.NodeInstance, error) {
	seen := make(map[string]bool, len(list))
	out := make([]*config.NodeInstance, 0, len(list))
	for _, named := range list {
		if seen[named.Name] {
			return nil, fmt.Errorf("duplicate instance '%s'", named.Name)
		}
		seen[named.Name] = true

		if named.Instance.Template == "" && named.Instance.Type == "" {
			return nil, fmt.Errorf("instance '%s' declares neither a template nor a type", named.Name)
		}
		out = append(out, &config.NodeInstance{
			Name:         named.Name,
			TemplateName: named.Instance.Template,
			Role:         named.Instance.Type,
			ReadyState:   config.ReadyState(named.Instance.ReadyState),
		})
	}
	return out, nil
}

// TranslateRepositories converts the repository mapping.
func TranslateRepositories(repos map[string]schema.Repository) map[string]*config.Repository {
	out := make(map[string]*config.Repository, len(repos))
	for name, repo := range repos {
		out[name] = &config.Repository{
			Name:     name,
			URL:      repo.URL,
			Revision: repo.Revision,
		}
	}
	return out
}

// TranslateImports converts the import list.
func TranslateImports(imports []schema.Import) []*config.Import {
	out := make([]*config.Import, 0, len(imports))
	for _, imp := range imports {
		out = append(out, &config.Import{
			Repository: imp.Repository,
			File:       imp.File,
		})
	}
	return out
}
