package app

import (
	"context"
	"fmt"

	"github.com/mehak151/unfurl/internal/ctxlog"
	"github.com/mehak151/unfurl/internal/fsutil"
	"github.com/mehak151/unfurl/internal/runner"
)

// Run executes the main application flow for the configured manifest.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	manifestFile, err := fsutil.ResolveManifestPath(a.config.ManifestPath)
	if err != nil {
		return err
	}
	a.logger.Debug("Manifest path resolved.", "file", manifestFile)

	if a.config.RenderOnly {
		rendered, err := a.loader.Render(ctx, manifestFile)
		if err != nil {
			return err
		}
		fmt.Fprint(a.outW, rendered)
		return nil
	}

	model, ops, err := a.loader.Load(ctx, manifestFile)
	if err != nil {
		return err
	}
	a.logger.Info("Model ready.", "instances", len(model.Instances), "operations", len(ops))

	if a.config.PlanOnly {
		for _, op := range ops {
			fmt.Fprintf(a.outW, "%s\n", op.String())
		}
		return nil
	}

	run := runner.New(a.baseDir(manifestFile), runner.Options{DryRun: a.config.DryRun})
	report, err := run.Run(ctx, model, ops)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}

	for _, res := range report.Results {
		fmt.Fprintf(a.outW, "%s: %s\n", res.Operation.String(), res.Status)
	}
	a.logger.Info("Execution finished.", "operations", len(report.Results))
	return nil
}
