package prompts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BaSui01/synthdoc/prompt"
	"github.com/BaSui01/synthdoc/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Parses(t *testing.T) {
	processes, err := Default()
	require.NoError(t, err)

	names := make([]string, 0, len(processes))
	for _, p := range processes {
		names = append(names, p.Name)
	}
	assert.ElementsMatch(t, []string{"sample-generator", "sample-repair"}, names)

	_, err = workflow.NewRegistry(processes)
	require.NoError(t, err)
}

func TestDefault_StageOrderAndOutputs(t *testing.T) {
	processes, err := Default()
	require.NoError(t, err)
	reg, err := workflow.NewRegistry(processes)
	require.NoError(t, err)

	gen, ok := reg.Process("sample-generator")
	require.True(t, ok)
	assert.Equal(t, []string{"draft", "review"}, gen.StageNames())
	assert.Equal(t, "sample", gen.Output())

	repair, ok := reg.Process("sample-repair")
	require.True(t, ok)
	assert.Equal(t, []string{"repair"}, repair.StageNames())
	assert.Equal(t, "sample", repair.Output())
}

func TestDefault_RepairTemplateUsesLoopFields(t *testing.T) {
	processes, err := Default()
	require.NoError(t, err)

	for _, p := range processes {
		if p.Name != "sample-repair" {
			continue
		}
		names := prompt.Placeholders(p.Stages[0].Template)
		assert.Contains(t, names, "currentArtifact")
		assert.Contains(t, names, "errorReport")
		assert.Contains(t, names, "specification")
	}
}

func TestRaw_IsCopy(t *testing.T) {
	raw := Raw()
	require.NotEmpty(t, raw)
	raw[0] = 'X'
	assert.NotEqual(t, raw[0], Raw()[0])
}

func TestLoad_OverridesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.yaml")
	content := `
version: "1"
processes:
  - name: sample-repair
    output_field: fixed
    stages:
      - name: fix
        template: "fix <!currentArtifact!>"
        wisdom_field: fixed
  - name: ceds-generator
    stages:
      - name: only
        template: "generate <!specification!>"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	processes, err := Load(path)
	require.NoError(t, err)
	require.Len(t, processes, 3)

	byName := make(map[string]workflow.ThoughtProcess)
	for _, p := range processes {
		byName[p.Name] = p
	}
	assert.Equal(t, "fixed", byName["sample-repair"].Output())
	assert.Equal(t, []string{"fix"}, byName["sample-repair"].StageNames())
	assert.Contains(t, byName, "ceds-generator")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	assert.Error(t, err)
}
