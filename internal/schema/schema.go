// Package schema defines the YAML wire structure of a rendered ensemble
// document. Mappings whose order is semantically meaningful (instances,
// node templates, interfaces, operations) decode into ordered lists rather
// than Go maps, and duplicate keys are preserved so the registry can report
// them as configuration errors.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is the top-level envelope of an ensemble manifest.
type Document struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Spec       Spec   `yaml:"spec"`
}

// Spec holds the deployment topology: declared instances plus the service
// template they draw their definitions from.
type Spec struct {
	Instances       InstanceList    `yaml:"instances"`
	ServiceTemplate ServiceTemplate `yaml:"service_template"`
}

// ServiceTemplate groups the reusable parts of the document.
type ServiceTemplate struct {
	Repositories  map[string]Repository `yaml:"repositories"`
	Imports       []Import              `yaml:"imports"`
	NodeTemplates TemplateList          `yaml:"node_templates"`
}

// Repository is a named external source.
type Repository struct {
	URL      string `yaml:"url"`
	Revision string `yaml:"revision"`
}

// Import pulls node templates from a file inside a named repository.
type Import struct {
	Repository string `yaml:"repository"`
	File       string `yaml:"file"`
}

// ImportDocument is the schema of an imported template file.
type ImportDocument struct {
	NodeTemplates TemplateList `yaml:"node_templates"`
}

// Instance declares a named node instance.
type Instance struct {
	// Template binds the instance to a node template by name.
	Template string `yaml:"template"`
	// Type requests a role instead; the default directive resolves it.
	Type       string `yaml:"type"`
	ReadyState string `yaml:"readyState"`
}

// NamedInstance pairs an instance with its mapping key.
type NamedInstance struct {
	Name     string
	Instance Instance
}

// InstanceList is the ordered form of the `instances` mapping.
type InstanceList []NamedInstance

// UnmarshalYAML decodes a YAML mapping into an ordered instance list.
func (l *InstanceList) UnmarshalYAML(value *yaml.Node) error {
	pairs, err := mappingPairs(value, "instances")
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		var inst Instance
		if err := pair.value.Decode(&inst); err != nil {
			return fmt.Errorf("failed to decode instance '%s': %w", pair.key, err)
		}
		*l = append(*l, NamedInstance{Name: pair.key, Instance: inst})
	}
	return nil
}

// NodeTemplate declares a reusable typed node definition.
type NodeTemplate struct {
	Type         string             `yaml:"type"`
	Directives   []string           `yaml:"directives"`
	Interfaces   InterfaceList      `yaml:"interfaces"`
	Requirements []RequirementEntry `yaml:"requirements"`
}

// NamedTemplate pairs a template with its mapping key.
type NamedTemplate struct {
	Name     string
	Template NodeTemplate
}

// TemplateList is the ordered form of the `node_templates` mapping.
// Duplicate names survive decoding so they can be reported downstream.
type TemplateList []NamedTemplate

// UnmarshalYAML decodes a YAML mapping into an ordered template list.
func (l *TemplateList) UnmarshalYAML(value *yaml.Node) error {
	pairs, err := mappingPairs(value, "node_templates")
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		var tmpl NodeTemplate
		if err := pair.value.Decode(&tmpl); err != nil {
			return fmt.Errorf("failed to decode node template '%s': %w", pair.key, err)
		}
		*l = append(*l, NamedTemplate{Name: pair.key, Template: tmpl})
	}
	return nil
}

// NamedInterface pairs a lifecycle interface with its mapping key.
type NamedInterface struct {
	Name       string
	Operations OperationList
}

// InterfaceList is the ordered form of the `interfaces` mapping.
type InterfaceList []NamedInterface

// UnmarshalYAML decodes a YAML mapping into an ordered interface list.
func (l *InterfaceList) UnmarshalYAML(value *yaml.Node) error {
	pairs, err := mappingPairs(value, "interfaces")
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		var ops OperationList
		if err := pair.value.Decode(&ops); err != nil {
			return fmt.Errorf("failed to decode interface '%s': %w", pair.key, err)
		}
		*l = append(*l, NamedInterface{Name: pair.key, Operations: ops})
	}
	return nil
}

// NamedOperation pairs an operation with its mapping key.
type NamedOperation struct {
	Name string
	Step Step
}

// OperationList is the ordered form of an interface's operation mapping.
type OperationList []NamedOperation

// UnmarshalYAML decodes a YAML mapping into an ordered operation list.
func (l *OperationList) UnmarshalYAML(value *yaml.Node) error {
	pairs, err := mappingPairs(value, "operations")
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		var step Step
		if err := pair.value.Decode(&step); err != nil {
			return fmt.Errorf("failed to decode operation '%s': %w", pair.key, err)
		}
		*l = append(*l, NamedOperation{Name: pair.key, Step: step})
	}
	return nil
}

// Step is an implementation step. The short form is a bare scalar holding
// the inline script body; the long form is a mapping with an inline
// `implementation` or external `file`, plus an `inputs` option bag.
type Step struct {
	Implementation string
	File           string
	Inputs         map[string]any
}

// UnmarshalYAML accepts both the scalar and mapping forms of a step.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		return value.Decode(&s.Implementation)
	case yaml.MappingNode:
		var aux struct {
			Implementation string         `yaml:"implementation"`
			File           string         `yaml:"file"`
			Inputs         map[string]any `yaml:"inputs"`
		}
		if err := value.Decode(&aux); err != nil {
			return err
		}
		if aux.Implementation != "" && aux.File != "" {
			return fmt.Errorf("step declares both 'implementation' and 'file' (line %d)", value.Line)
		}
		s.Implementation = aux.Implementation
		s.File = aux.File
		s.Inputs = aux.Inputs
		return nil
	default:
		return fmt.Errorf("step must be a scalar or a mapping (line %d)", value.Line)
	}
}

// RequirementEntry is a single-key mapping of requirement name to target
// node, e.g. `- host: localhost`.
type RequirementEntry struct {
	Name string
	Node string
}

// UnmarshalYAML decodes the single-key requirement form.
func (r *RequirementEntry) UnmarshalYAML(value *yaml.Node) error {
	pairs, err := mappingPairs(value, "requirement")
	if err != nil {
		return err
	}
	if len(pairs) != 1 {
		return fmt.Errorf("requirement must have exactly one key (line %d)", value.Line)
	}
	r.Name = pairs[0].key
	return pairs[0].value.Decode(&r.Node)
}

type nodePair struct {
	key   string
	value *yaml.Node
}

// mappingPairs returns the key/value pairs of a mapping node in declaration
// order. Duplicate keys are returned as-is.
func mappingPairs(value *yaml.Node, what string) ([]nodePair, error) {
	if value.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s must be a mapping (line %d)", what, value.Line)
	}
	pairs := make([]nodePair, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		var key string
		if err := value.Content[i].Decode(&key); err != nil {
			return nil, fmt.Errorf("failed to decode %s key: %w", what, err)
		}
		pairs = append(pairs, nodePair{key: key, value: value.Content[i+1]})
	}
	return pairs, nil
}
