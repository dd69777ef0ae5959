package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	t.Setenv(EnvPodName, "")
	t.Setenv(EnvPodNamespace, "")

	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), config)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	t.Setenv(EnvPodName, "")
	t.Setenv(EnvPodNamespace, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
unit:
  appName: petclinic
  namespace: apps
database:
  name: petclinic
reconcile:
  initialBackoff: 2s
options:
  application-config: '{"server":{"port":8888}}'
  jvm-config: -Xmx512m
  ingress-strip-url-prefix: /petclinic
`)

	config, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "petclinic", config.Unit.AppName)
	assert.Equal(t, "apps", config.Unit.Namespace)
	assert.Equal(t, DefaultContainer, config.Unit.Container, "unset keys keep their default")
	assert.Equal(t, "petclinic", config.Database.Name)
	assert.Equal(t, DefaultDatabaseRelation, config.Database.Relation)
	assert.Equal(t, 2*time.Second, config.Reconcile.InitialBackoff)
	assert.Equal(t, 5*time.Minute, config.Reconcile.MaxBackoff)
	assert.Equal(t, `{"server":{"port":8888}}`, config.Options.ApplicationConfig)
	assert.Equal(t, "-Xmx512m", config.Options.JVMConfig)
	assert.Equal(t, "/petclinic", config.Options.IngressStripURLPrefix)
	assert.Equal(t, "petclinic-ingress", config.IngressConfigMapName())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPodName, "spring-boot-0")
	t.Setenv(EnvPodNamespace, "prod")
	dir := t.TempDir()
	writeConfig(t, dir, "unit:\n  podName: from-file\n  namespace: from-file\n")

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "spring-boot-0", config.Unit.PodName)
	assert.Equal(t, "prod", config.Unit.Namespace)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "unit: [not, a, map")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "unit:\n  container: ''\nlogging:\n  format: xml\n")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unit.container")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()

	options, err := LoadOptions(dir)
	require.NoError(t, err)
	assert.Equal(t, Options{}, options)

	writeConfig(t, dir, "options:\n  ingress-hostname: app.example.com\n")
	options, err = LoadOptions(dir)
	require.NoError(t, err)
	assert.Equal(t, Options{IngressHostname: "app.example.com"}, options)

	writeConfig(t, dir, "options: [")
	_, err = LoadOptions(dir)
	assert.Error(t, err)
}
