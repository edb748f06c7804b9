package config

import "fmt"

// DefaultDirective marks a node template as the fallback for its role. A
// default template is selected for a role only when no template is bound to
// that role explicitly.
const DefaultDirective = "default"

// Model is the unified representation of a fully loaded ensemble document:
// every node template, every declared instance, and the external
// repositories they were assembled from.
type Model struct {
	// Templates preserves declaration order, imports first.
	Templates []*NodeTemplate
	// Instances preserves declaration order.
	Instances    []*NodeInstance
	Repositories map[string]*Repository
	Imports      []*Import
}

// Repository is a named external source from which imported templates or
// installer assets are fetched.
type Repository struct {
	Name     string
	URL      string
	Revision string
}

// Import references a file inside a named repository whose node templates
// are merged into the ensemble.
type Import struct {
	Repository string
	File       string
}

// NodeTemplate is a reusable typed definition of a resource and the
// lifecycle operations that manage it.
type NodeTemplate struct {
	Name         string
	Type         string
	Directives   []string
	Interfaces   []*Interface
	Requirements []*Requirement
}

// IsDefault reports whether the template carries the default directive.
func (t *NodeTemplate) IsDefault() bool {
	for _, d := range t.Directives {
		if d == DefaultDirective {
			return true
		}
	}
	return false
}

// Interface groups the operations of one lifecycle interface (for example
// "Standard"). Operations preserve declaration order.
type Interface struct {
	Name       string
	Operations []*OperationDef
}

// OperationDef binds an operation name to its implementation step.
type OperationDef struct {
	Name string
	Step *Step
}

// Requirement declares a dependency of a template's instances on another
// named node.
type Requirement struct {
	Name string
	Node string
}

// Step is an executable unit: an inline script body or a reference to a
// file inside the ensemble's base directory, plus its recognized options.
type Step struct {
	// Implementation is the inline script body, or the relative path of a
	// script file when File is true.
	Implementation string
	File           bool
	Options        StepOptions
}

// StepOptions is the configuration bag recognized on a step.
type StepOptions struct {
	// Cwd overrides the working directory the step runs in.
	Cwd string `mapstructure:"cwd"`
	// KeepLines preserves the script's line structure so interpreter error
	// messages report usable line numbers.
	KeepLines bool `mapstructure:"keeplines"`
	// Shell is the interpreter executable. It must resolve to an existing
	// executable when the step is prepared.
	Shell string `mapstructure:"shell"`
	// Env holds extra environment entries merged over the process env.
	Env map[string]string `mapstructure:"env"`
}

// NodeInstance is a named entity bound to exactly one node template.
type NodeInstance struct {
	Name string
	// TemplateName is the explicit template binding, empty when the
	// instance requests a role instead.
	TemplateName string
	// Role is the requested node type, resolved through the default
	// directive when no explicit template is named.
	Role       string
	ReadyState ReadyState
	// Template is populated once the instance is bound.
	Template *NodeTemplate
}

// Operation is one entry of the ordered execution handoff: which instance,
// which lifecycle interface, which operation, and the step that implements
// it. The loader produces these; it never executes them.
type Operation struct {
	Instance  string
	Interface string
	Operation string
	Step      *Step
}

// String renders the operation address, e.g. "localhost.Standard.create".
func (o Operation) String() string {
	return fmt.Sprintf("%s.%s.%s", o.Instance, o.Interface, o.Operation)
}
