package app_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehak151/unfurl/internal/app"
	"github.com/mehak151/unfurl/internal/testutil"
)

const basicManifest = `
kind: Ensemble
spec:
  instances:
    localhost:
      template: localhost
  service_template:
    node_templates:
      localhost:
        type: Compute
        interfaces:
          Standard:
            create: echo created
            configure: echo configured
`

func TestRunExecutesOperations(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": basicManifest,
	}, nil)

	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "localhost.Standard.create: ok")
	assert.Contains(t, result.Stdout, "localhost.Standard.configure: ok")
	assert.Contains(t, result.LogOutput, "Execution finished.")
}

func TestRunPlanOnly(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": basicManifest,
	}, func(cfg *app.Config) {
		cfg.PlanOnly = true
	})

	require.NoError(t, result.Err)
	assert.Equal(t, "localhost.Standard.create\nlocalhost.Standard.configure\n", result.Stdout)
}

func TestRunDryRun(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": basicManifest,
	}, func(cfg *app.Config) {
		cfg.DryRun = true
	})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "localhost.Standard.create: planned")
	assert.NotContains(t, result.Stdout, ": ok")
}

func TestRunRenderOnly(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": `
kind: Ensemble
spec:
  service_template:
    node_templates:
      localhost:
        type: Compute
        interfaces:
          Standard:
            create: "echo [% \"2\" %]"
`,
	}, func(cfg *app.Config) {
		cfg.RenderOnly = true
	})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "echo 2")
	assert.NotContains(t, result.Stdout, "[%")
}

func TestRunReadyInstanceSkipsCreate(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": `
kind: Ensemble
spec:
  instances:
    localhost:
      template: localhost
      readyState: ok
  service_template:
    node_templates:
      localhost:
        type: Compute
        interfaces:
          Standard:
            create: exit 1
            configure: echo configured
`,
	}, nil)

	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "localhost.Standard.create: skipped")
	assert.Contains(t, result.Stdout, "localhost.Standard.configure: ok")
}

func TestRunManifestInDirectory(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"workspace/ensemble.yaml": basicManifest,
	}, func(cfg *app.Config) {
		// Point at the directory; resolution finds ensemble.yaml inside it.
		cfg.ManifestPath = filepath.Join(filepath.Dir(cfg.ManifestPath), "workspace")
		cfg.PlanOnly = true
	})

	require.NoError(t, result.Err)
	assert.Contains(t, result.Stdout, "localhost.Standard.create")
}

func TestRunFailingOperation(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": `
kind: Ensemble
spec:
  instances:
    localhost:
      template: localhost
  service_template:
    node_templates:
      localhost:
        type: Compute
        interfaces:
          Standard:
            create: exit 3
`,
	}, nil)

	require.Error(t, result.Err)
	assert.ErrorContains(t, result.Err, "execution failed")
}

func TestRunLoadFailureSurfacesState(t *testing.T) {
	result := testutil.RunIntegrationTest(t, map[string]string{
		"ensemble.yaml": `
kind: Ensemble
spec:
  service_template:
    node_templates:
      web:
        type: Compute
      web:
        type: Compute
`,
	}, nil)

	require.Error(t, result.Err)
	assert.ErrorContains(t, result.Err, "load failed after state")
	assert.ErrorContains(t, result.Err, "web")
}
