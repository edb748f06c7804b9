package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleDoc = `
apiVersion: unfurl/v1alpha1
kind: Ensemble
spec:
  instances:
    localhost:
      template: localhost
      readyState: ok
    cluster:
      type: K8sCluster
  service_template:
    repositories:
      asdf:
        url: https://github.com/asdf-vm/asdf.git
        revision: v0.8.0
    imports:
      - repository: asdf
        file: templates.yaml
    node_templates:
      localhost:
        type: Compute
        interfaces:
          Standard:
            create: echo created
            configure:
              implementation: |
                set -e
                ./bootstrap.sh
              inputs:
                cwd: /tmp
                keeplines: true
                shell: /bin/bash
                env:
                  INSTALL_DIR: /opt
      defaultK8sCluster:
        type: K8sCluster
        directives:
          - default
        requirements:
          - host: localhost
`

func TestDecodeDocument(t *testing.T) {
	var doc Document
	require.NoError(t, yaml.Unmarshal([]byte(sampleDoc), &doc))

	assert.Equal(t, "Ensemble", doc.Kind)

	t.Run("instances preserve order", func(t *testing.T) {
		require.Len(t, doc.Spec.Instances, 2)
		assert.Equal(t, "localhost", doc.Spec.Instances[0].Name)
		assert.Equal(t, "ok", doc.Spec.Instances[0].Instance.ReadyState)
		assert.Equal(t, "cluster", doc.Spec.Instances[1].Name)
		assert.Equal(t, "K8sCluster", doc.Spec.Instances[1].Instance.Type)
	})

	t.Run("repositories and imports", func(t *testing.T) {
		repo, ok := doc.Spec.ServiceTemplate.Repositories["asdf"]
		require.True(t, ok)
		assert.Equal(t, "https://github.com/asdf-vm/asdf.git", repo.URL)
		assert.Equal(t, "v0.8.0", repo.Revision)

		require.Len(t, doc.Spec.ServiceTemplate.Imports, 1)
		assert.Equal(t, "templates.yaml", doc.Spec.ServiceTemplate.Imports[0].File)
	})

	t.Run("templates preserve order", func(t *testing.T) {
		tmpls := doc.Spec.ServiceTemplate.NodeTemplates
		require.Len(t, tmpls, 2)
		assert.Equal(t, "localhost", tmpls[0].Name)
		assert.Equal(t, "defaultK8sCluster", tmpls[1].Name)
		assert.Equal(t, []string{"default"}, tmpls[1].Template.Directives)
	})

	t.Run("scalar step form", func(t *testing.T) {
		ifaces := doc.Spec.ServiceTemplate.NodeTemplates[0].Template.Interfaces
		require.Len(t, ifaces, 1)
		assert.Equal(t, "Standard", ifaces[0].Name)

		ops := ifaces[0].Operations
		require.Len(t, ops, 2)
		assert.Equal(t, "create", ops[0].Name)
		assert.Equal(t, "echo created", ops[0].Step.Implementation)
		assert.Nil(t, ops[0].Step.Inputs)
	})

	t.Run("mapping step form with inputs", func(t *testing.T) {
		ops := doc.Spec.ServiceTemplate.NodeTemplates[0].Template.Interfaces[0].Operations
		configure := ops[1]
		assert.Equal(t, "configure", configure.Name)
		assert.Contains(t, configure.Step.Implementation, "bootstrap.sh")
		assert.Equal(t, "/tmp", configure.Step.Inputs["cwd"])
		assert.Equal(t, true, configure.Step.Inputs["keeplines"])
	})

	t.Run("requirements decode as name node pairs", func(t *testing.T) {
		reqs := doc.Spec.ServiceTemplate.NodeTemplates[1].Template.Requirements
		require.Len(t, reqs, 1)
		assert.Equal(t, "host", reqs[0].Name)
		assert.Equal(t, "localhost", reqs[0].Node)
	})
}

func TestDecodeDuplicateTemplateKeysSurvive(t *testing.T) {
	// Duplicate mapping keys must reach the registry so it can report
	// them, rather than being collapsed during decoding.
	text := `
node_templates:
  web:
    type: Compute
  web:
    type: Compute
`
	var st ServiceTemplate
	require.NoError(t, yaml.Unmarshal([]byte(text), &st))
	require.Len(t, st.NodeTemplates, 2)
	assert.Equal(t, st.NodeTemplates[0].Name, st.NodeTemplates[1].Name)
}

func TestDecodeStepErrors(t *testing.T) {
	t.Run("both implementation and file rejected", func(t *testing.T) {
		var s Step
		err := yaml.Unmarshal([]byte("implementation: echo\nfile: run.sh\n"), &s)
		assert.ErrorContains(t, err, "both")
	})

	t.Run("sequence form rejected", func(t *testing.T) {
		var s Step
		err := yaml.Unmarshal([]byte("- a\n- b\n"), &s)
		assert.Error(t, err)
	})
}
