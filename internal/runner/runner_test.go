package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehak151/unfurl/internal/config"
)

func op(instance, iface, name, script string) config.Operation {
	return config.Operation{
		Instance:  instance,
		Interface: iface,
		Operation: name,
		Step:      &config.Step{Implementation: script},
	}
}

func model(instances ...*config.NodeInstance) *config.Model {
	return &config.Model{Instances: instances}
}

func TestRunExecutesInOrder(t *testing.T) {
	r := New(t.TempDir(), Options{})

	report, err := r.Run(context.Background(), model(
		&config.NodeInstance{Name: "web"},
	), []config.Operation{
		op("web", "Standard", "create", "echo created"),
		op("web", "Standard", "configure", "echo configured"),
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, StatusOK, report.Results[0].Status)
	assert.Equal(t, "created\n", report.Results[0].Output)
	assert.Equal(t, StatusOK, report.Results[1].Status)
	assert.False(t, report.Failed())
}

func TestRunFailsFast(t *testing.T) {
	r := New(t.TempDir(), Options{})

	report, err := r.Run(context.Background(), model(
		&config.NodeInstance{Name: "web"},
	), []config.Operation{
		op("web", "Standard", "create", "exit 7"),
		op("web", "Standard", "configure", "echo never"),
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "web.Standard.create")

	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusError, report.Results[0].Status)
	assert.True(t, report.Failed())
}

func TestRunSkipsCreateForReadyInstance(t *testing.T) {
	r := New(t.TempDir(), Options{})

	report, err := r.Run(context.Background(), model(
		&config.NodeInstance{Name: "web", ReadyState: config.ReadyOK},
	), []config.Operation{
		op("web", "Standard", "create", "exit 1"),
		op("web", "Standard", "configure", "echo configured"),
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	assert.Equal(t, StatusSkipped, report.Results[0].Status)
	assert.Equal(t, StatusOK, report.Results[1].Status)
}

func TestRunDryRun(t *testing.T) {
	r := New(t.TempDir(), Options{DryRun: true})

	report, err := r.Run(context.Background(), model(
		&config.NodeInstance{Name: "web"},
	), []config.Operation{
		op("web", "Standard", "create", "exit 1"),
		op("web", "Standard", "configure", "echo configured"),
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	for _, res := range report.Results {
		assert.Equal(t, StatusPlanned, res.Status)
		assert.Empty(t, res.Output)
	}
}

func TestRunUnpreparableOperation(t *testing.T) {
	r := New(t.TempDir(), Options{})

	badShell := config.Operation{
		Instance:  "web",
		Interface: "Standard",
		Operation: "create",
		Step: &config.Step{
			Implementation: "echo",
			Options:        config.StepOptions{Shell: "no-such-interpreter"},
		},
	}

	report, err := r.Run(context.Background(), model(
		&config.NodeInstance{Name: "web"},
	), []config.Operation{badShell})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to prepare")
	require.Len(t, report.Results, 1)
	assert.Equal(t, StatusError, report.Results[0].Status)
}

func TestRunCancelledContext(t *testing.T) {
	r := New(t.TempDir(), Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := r.Run(ctx, model(), []config.Operation{
		op("web", "Standard", "create", "echo never"),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
}
