package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spring-boot-operator/internal/reconciler"
)

// planFixture points the plan flags at a root holding /app/shop.jar and a
// config directory with the given config.yaml content.
func planFixture(t *testing.T, configYAML string) *bytes.Buffer {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "shop.jar"), []byte("PK"), 0o644))

	dir := t.TempDir()
	if configYAML != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644))
	}

	saved := []string{planRoot, planContainer, planMemoryLimit, planOutput, configPath, logLevel}
	t.Cleanup(func() {
		planRoot, planContainer, planMemoryLimit, planOutput, configPath, logLevel =
			saved[0], saved[1], saved[2], saved[3], saved[4], saved[5]
	})

	planRoot, planContainer, planMemoryLimit, planOutput = root, "spring-boot-app", "", "table"
	configPath, logLevel = dir, "error"

	return &bytes.Buffer{}
}

func runPlanInto(t *testing.T, out *bytes.Buffer) error {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	return runPlan(cmd, nil)
}

func TestPlan_LayerYAML(t *testing.T) {
	out := planFixture(t, "options:\n  application-config: '{\"server\": {\"port\": 8888}}'\n")
	planOutput = "yaml"

	require.NoError(t, runPlanInto(t, out))
	assert.Contains(t, out.String(), "command: java -jar /app/shop.jar")
	assert.Contains(t, out.String(), "url: http://localhost:8888/actuator/health")
	assert.Contains(t, out.String(), "SPRING_APPLICATION_JSON")
}

func TestPlan_Table(t *testing.T) {
	out := planFixture(t, "")

	require.NoError(t, runPlanInto(t, out))
	assert.Contains(t, out.String(), "8080")
	assert.Contains(t, out.String(), "/app/shop.jar")
}

func TestPlan_Blocked(t *testing.T) {
	out := planFixture(t, "options:\n  application-config: '[1, 2]'\n")

	err := runPlanInto(t, out)
	var notActive *NotActiveError
	require.ErrorAs(t, err, &notActive)
	assert.Equal(t, reconciler.OutcomeBlocked, notActive.Outcome.Kind)
	assert.Equal(t, "Invalid application-config value, expecting an object in JSON", notActive.Outcome.Reason)
}

func TestPlan_InvalidMemoryLimit(t *testing.T) {
	out := planFixture(t, "")
	planMemoryLimit = "lots"

	err := runPlanInto(t, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--memory-limit")
}
