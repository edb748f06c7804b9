// Package runner is a minimal local execution engine for the operation
// list produced by the loader. It prepares each step, runs it through its
// interpreter, and records per-operation results. The loader itself never
// executes anything; this package is the in-process stand-in for an
// external orchestration runtime.
package runner

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/mehak151/unfurl/internal/config"
	"github.com/mehak151/unfurl/internal/ctxlog"
	"github.com/mehak151/unfurl/internal/step"
)

// Status is the outcome of one operation.
type Status string

const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
	StatusPlanned Status = "planned"
)

// Result records the outcome of a single operation.
type Result struct {
	Operation config.Operation
	Status    Status
	Output    string
	Err       error
}

// Report collects the results of a run in execution order.
type Report struct {
	Results []Result
}

// Failed reports whether any operation ended in error.
func (r *Report) Failed() bool {
	for _, res := range r.Results {
		if res.Status == StatusError {
			return true
		}
	}
	return false
}

// Options configures a Runner.
type Options struct {
	// DryRun plans every operation without executing it.
	DryRun bool
	// SearchPath backs interpreter resolution, nil meaning $PATH.
	SearchPath []string
}

// Runner executes operation lists.
type Runner struct {
	baseDir string
	opts    Options
}

// New creates a Runner. baseDir anchors relative script files and is the
// default working directory for steps.
func New(baseDir string, opts Options) *Runner {
	return &Runner{baseDir: baseDir, opts: opts}
}

// Run executes the operations in order, failing fast: the first failed or
// unpreparable operation ends the run, and the returned report holds
// everything attempted up to that point.
func (r *Runner) Run(ctx context.Context, model *config.Model, ops []config.Operation) (*Report, error) {
	logger := ctxlog.FromContext(ctx)

	byName := make(map[string]*config.NodeInstance, len(model.Instances))
	for _, inst := range model.Instances {
		byName[inst.Name] = inst
	}

	report := &Report{}
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		inst := byName[op.Instance]
		if inst != nil && op.Operation == "create" && inst.ReadyState == config.ReadyOK {
			// Pre-existing instances skip creation.
			logger.Info("Skipping create for ready instance.", "operation", op.String())
			report.Results = append(report.Results, Result{Operation: op, Status: StatusSkipped})
			continue
		}

		prepared, err := step.Prepare(op.Step, r.baseDir, r.opts.SearchPath)
		if err != nil {
			report.Results = append(report.Results, Result{Operation: op, Status: StatusError, Err: err})
			return report, fmt.Errorf("failed to prepare operation %s: %w", op.String(), err)
		}

		if r.opts.DryRun {
			logger.Info("Planned operation.", "operation", op.String(), "shell", prepared.Shell)
			report.Results = append(report.Results, Result{Operation: op, Status: StatusPlanned})
			continue
		}

		logger.Info("Running operation.", "operation", op.String(), "shell", prepared.Shell, "dir", prepared.Dir)
		cmd := exec.CommandContext(ctx, prepared.Shell, "-c", prepared.Script)
		cmd.Dir = prepared.Dir
		cmd.Env = prepared.Env

		output, err := cmd.CombinedOutput()
		if err != nil {
			logger.Error("Operation failed.", "operation", op.String(), "error", err)
			report.Results = append(report.Results, Result{
				Operation: op, Status: StatusError, Output: string(output), Err: err,
			})
			return report, fmt.Errorf("operation %s failed: %w", op.String(), err)
		}

		logger.Debug("Operation succeeded.", "operation", op.String())
		report.Results = append(report.Results, Result{Operation: op, Status: StatusOK, Output: string(output)})
	}
	return report, nil
}
