package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zclconf/go-cty/cty"

	"github.com/mehak151/unfurl/internal/config"
	"github.com/mehak151/unfurl/internal/ctxlog"
	"github.com/mehak151/unfurl/internal/dag"
	"github.com/mehak151/unfurl/internal/ensemble"
	"github.com/mehak151/unfurl/internal/helpers"
	"github.com/mehak151/unfurl/internal/registry"
	"github.com/mehak151/unfurl/internal/render"
	"github.com/mehak151/unfurl/internal/repository"
	"github.com/mehak151/unfurl/internal/schema"
)

// Options configures a Loader.
type Options struct {
	// Delimiters is the expression delimiter pair; the zero value selects
	// the ensemble default.
	Delimiters render.Delimiters
	// CacheRoot is where repository references are materialized; the zero
	// value selects ~/.unfurl.
	CacheRoot    string
	FetchTimeout time.Duration
	FetchRetries int
	// SearchPath backs the which helper; nil means $PATH.
	SearchPath []string
	// Variables are extra named values available to expressions.
	Variables map[string]cty.Value
	// Helpers are extra helper functions registered alongside the builtins.
	Helpers *helpers.Registry
}

// Loader loads ensemble manifests into Ready models.
type Loader struct {
	opts   Options
	engine *render.Engine
}

var _ config.Loader = (*Loader)(nil)

// New validates the options and returns a Loader.
func New(opts Options) (*Loader, error) {
	if opts.Delimiters == (render.Delimiters{}) {
		opts.Delimiters = render.DefaultDelimiters
	}
	if opts.CacheRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = os.TempDir()
		}
		opts.CacheRoot = filepath.Join(home, ".unfurl")
	}
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 30 * time.Second
	}
	if opts.FetchRetries == 0 {
		opts.FetchRetries = 3
	}

	engine, err := render.NewEngine(opts.Delimiters)
	if err != nil {
		return nil, err
	}
	return &Loader{opts: opts, engine: engine}, nil
}

// Load runs the full pipeline on the manifest at path. It returns a Ready
// model and the ordered lifecycle operations, or a *loader.Error carrying
// the last state that completed.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, []config.Operation, error) {
	run := &load{loader: l, state: StateUnparsed}
	defer run.close()

	if err := run.execute(ctx, path); err != nil {
		return nil, nil, &Error{State: run.state, Err: err}
	}
	return run.model, run.ops, nil
}

// Render runs the pipeline only far enough to produce the rendered document
// text, without building a model.
func (l *Loader) Render(ctx context.Context, path string) (string, error) {
	run := &load{loader: l, state: StateUnparsed}
	defer run.close()

	if err := run.renderDocument(ctx, path); err != nil {
		return "", &Error{State: run.state, Err: err}
	}
	return run.rendered, nil
}

// load carries the mutable state of one pipeline run.
type load struct {
	loader   *Loader
	state    State
	cache    *repository.Cache
	raw      string
	rendered string
	doc      *schema.Document
	renderCt *render.Context
	reg      *registry.Registry
	model    *config.Model
	ops      []config.Operation
}

func (p *load) close() {
	if p.cache != nil {
		p.cache.Close()
	}
}

// advance moves the pipeline to the next state, honoring cooperative
// cancellation between steps.
func (p *load) advance(ctx context.Context, next State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.state = next
	ctxlog.FromContext(ctx).Debug("Load state advanced.", "state", next.String())
	return nil
}

// renderDocument covers Unparsed through ReferencesResolved plus the final
// render: it pre-parses the raw text, materializes repository references,
// and renders the document with the full helper context.
func (p *load) renderDocument(ctx context.Context, path string) error {
	opts := p.loader.opts

	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest '%s': %w", path, err)
	}
	p.raw = string(rawBytes)

	// Pre-parse. Expressions live inside string scalars, so the raw text
	// is itself a valid document; this pass exists to learn the repository
	// references the render helpers need.
	preDoc, err := ensemble.Parse(p.raw)
	if err != nil {
		return err
	}
	if err := p.advance(ctx, StateParsed); err != nil {
		return err
	}

	repos := ensemble.TranslateRepositories(preDoc.Spec.ServiceTemplate.Repositories)
	p.cache = repository.NewCache(opts.CacheRoot,
		repository.WithTimeout(opts.FetchTimeout),
		repository.WithRetries(opts.FetchRetries),
	)
	if err := p.cache.Resolve(ctx, repos); err != nil {
		return err
	}
	if err := p.advance(ctx, StateReferencesResolved); err != nil {
		return err
	}

	reg := helpers.Builtin(p.cache, opts.SearchPath)
	rctx := render.NewContext()
	for name, val := range opts.Variables {
		rctx.Variables[name] = val
	}
	for name, fn := range reg.Functions() {
		rctx.Functions[name] = fn
	}
	if opts.Helpers != nil {
		for name, fn := range opts.Helpers.Functions() {
			rctx.Functions[name] = fn
		}
	}
	p.renderCt = rctx

	rendered, err := p.loader.engine.Render(p.raw, rctx)
	if err != nil {
		return err
	}
	p.rendered = rendered

	doc, err := ensemble.Parse(rendered)
	if err != nil {
		return err
	}
	p.doc = doc
	return nil
}

// execute runs the full pipeline to Ready.
func (p *load) execute(ctx context.Context, path string) error {
	if err := p.renderDocument(ctx, path); err != nil {
		return err
	}

	if err := p.registerTemplates(ctx); err != nil {
		return err
	}
	if err := p.advance(ctx, StateTemplatesRegistered); err != nil {
		return err
	}

	if err := p.reg.ValidateDefaults(); err != nil {
		return err
	}
	if err := p.advance(ctx, StateDefaultsResolved); err != nil {
		return err
	}

	instances, err := p.bindInstances(ctx)
	if err != nil {
		return err
	}
	if err := p.advance(ctx, StateInstancesBound); err != nil {
		return err
	}

	ops, err := planOperations(ctx, instances)
	if err != nil {
		return err
	}
	if err := p.advance(ctx, StateReady); err != nil {
		return err
	}

	p.model = &config.Model{
		Templates:    p.reg.Templates(),
		Instances:    instances,
		Repositories: ensemble.TranslateRepositories(p.doc.Spec.ServiceTemplate.Repositories),
		Imports:      ensemble.TranslateImports(p.doc.Spec.ServiceTemplate.Imports),
	}
	p.ops = ops

	ctxlog.FromContext(ctx).Info("Ensemble loaded.",
		"templates", len(p.model.Templates),
		"instances", len(p.model.Instances),
		"operations", len(p.ops))
	return nil
}

// registerTemplates fills the registry with imported templates first, then
// the document's own, so local declarations shadow-check against imports.
func (p *load) registerTemplates(ctx context.Context) error {
	p.reg = registry.New()

	for _, imp := range p.doc.Spec.ServiceTemplate.Imports {
		tmpls, err := p.loadImport(ctx, imp)
		if err != nil {
			return err
		}
		for _, tmpl := range tmpls {
			if err := p.reg.Add(tmpl); err != nil {
				return err
			}
		}
	}

	local, err := ensemble.TranslateTemplates(p.doc.Spec.ServiceTemplate.NodeTemplates)
	if err != nil {
		return err
	}
	for _, tmpl := range local {
		if err := p.reg.Add(tmpl); err != nil {
			return err
		}
	}
	return nil
}

// loadImport reads a template file out of a materialized repository,
// renders it with the same context as the main document, and translates
// its templates.
func (p *load) loadImport(ctx context.Context, imp schema.Import) ([]*config.NodeTemplate, error) {
	dir, err := p.cache.Dir(imp.Repository)
	if err != nil {
		return nil, fmt.Errorf("import of '%s': %w", imp.File, err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, imp.File))
	if err != nil {
		return nil, fmt.Errorf("failed to read import '%s' from repository '%s': %w", imp.File, imp.Repository, err)
	}

	rendered, err := p.loader.engine.Render(string(raw), p.renderCt)
	if err != nil {
		return nil, fmt.Errorf("failed to render import '%s': %w", imp.File, err)
	}

	impDoc, err := ensemble.ParseImport(rendered)
	if err != nil {
		return nil, fmt.Errorf("import '%s': %w", imp.File, err)
	}

	ctxlog.FromContext(ctx).Debug("Import loaded.",
		"repository", imp.Repository, "file", imp.File,
		"templates", len(impDoc.NodeTemplates))
	return ensemble.TranslateTemplates(impDoc.NodeTemplates)
}

// bindInstances resolves every declared instance to exactly one template
// and validates its readyState.
func (p *load) bindInstances(ctx context.Context) ([]*config.NodeInstance, error) {
	instances, err := ensemble.TranslateInstances(p.doc.Spec.Instances)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx)
	for _, inst := range instances {
		var tmpl *config.NodeTemplate
		if inst.TemplateName != "" {
			tmpl, err = p.reg.ResolveTemplate(inst.Name, inst.TemplateName)
		} else {
			tmpl, err = p.reg.ResolveRole(inst.Name, inst.Role)
		}
		if err != nil {
			return nil, err
		}
		inst.Template = tmpl

		if _, err := config.ParseReadyState(inst.Name, string(inst.ReadyState)); err != nil {
			return nil, err
		}
		logger.Debug("Instance bound.", "instance", inst.Name, "template", tmpl.Name, "type", tmpl.Type)
	}
	return instances, nil
}

// planOperations emits the ordered execution handoff: instances ordered by
// their requirements (declaration order where independent), and within
// each instance the interfaces and operations in declaration order.
func planOperations(ctx context.Context, instances []*config.NodeInstance) ([]config.Operation, error) {
	logger := ctxlog.FromContext(ctx)

	g := dag.New()
	byName := make(map[string]*config.NodeInstance, len(instances))
	for _, inst := range instances {
		g.AddNode(inst.Name)
		byName[inst.Name] = inst
	}

	for _, inst := range instances {
		for _, req := range inst.Template.Requirements {
			if _, ok := byName[req.Node]; !ok {
				// A requirement on a template nothing instantiates is inert.
				logger.Debug("Requirement target has no instance, ignoring.",
					"instance", inst.Name, "requirement", req.Name, "target", req.Node)
				continue
			}
			if err := g.AddEdge(req.Node, inst.Name); err != nil {
				return nil, err
			}
		}
	}

	order, err := g.Sort()
	if err != nil {
		return nil, err
	}

	var ops []config.Operation
	for _, name := range order {
		inst := byName[name]
		for _, iface := range inst.Template.Interfaces {
			for _, op := range iface.Operations {
				ops = append(ops, config.Operation{
					Instance:  inst.Name,
					Interface: iface.Name,
					Operation: op.Name,
					Step:      op.Step,
				})
			}
		}
	}
	return ops, nil
}
