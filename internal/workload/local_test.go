package workload

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockExecCommandContext re-runs the test binary as a fake command.
func mockExecCommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	cs := []string{"-test.run=TestHelperProcess", "--", name}
	cs = append(cs, args...)
	cmd := exec.CommandContext(ctx, os.Args[0], cs...)
	cmd.Env = []string{"GO_WANT_HELPER_PROCESS=1"}
	return cmd
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "No command\n")
		os.Exit(2)
	}

	switch args[0] {
	case "java":
		if os.Getenv("JAVA_TOOL_OPTIONS") == "-Xbogus" {
			fmt.Fprintf(os.Stderr, "Unrecognized option: -Xbogus\n")
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "openjdk version \"17\"\n")
		os.Exit(0)
	case "sleep":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %v\n", args)
	os.Exit(127)
}

func writeFile(t *testing.T, root, path string) {
	t.Helper()
	full := filepath.Join(root, strings.TrimPrefix(path, "/"))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, nil, 0o644))
}

func writeJar(t *testing.T, root, path string, entries ...string) {
	t.Helper()
	full := filepath.Join(root, strings.TrimPrefix(path, "/"))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))

	f, err := os.Create(full)
	require.NoError(t, err)
	w := zip.NewWriter(f)
	for _, entry := range entries {
		_, err := w.Create(entry)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestLocalContainer_FileOperations(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "/app/test.jar")
	writeFile(t, root, "/app/data.json")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "lib"), 0o755))

	c := NewLocalContainer("spring-boot-app", root)
	ctx := context.Background()

	assert.Equal(t, "spring-boot-app", c.Name())
	assert.True(t, c.CanConnect(ctx))

	exists, err := c.Exists(ctx, "/app/test.jar")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.Exists(ctx, "/app/missing.jar")
	require.NoError(t, err)
	assert.False(t, exists)

	isDir, err := c.IsDir(ctx, "/app")
	require.NoError(t, err)
	assert.True(t, isDir)

	isDir, err = c.IsDir(ctx, "/app/test.jar")
	require.NoError(t, err)
	assert.False(t, isDir)

	files, err := c.ListFiles(ctx, "/app")
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		if f.Name == "lib" {
			assert.True(t, f.IsDir)
		}
	}
	sort.Strings(names)
	assert.Equal(t, []string{"data.json", "lib", "test.jar"}, names)

	_, err = c.ListFiles(ctx, "/workspace")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalContainer_CanConnectMissingRoot(t *testing.T) {
	c := NewLocalContainer("spring-boot-app", filepath.Join(t.TempDir(), "absent"))
	assert.False(t, c.CanConnect(context.Background()))
}

func TestLocalContainer_CanConnectReadiness(t *testing.T) {
	tests := []struct {
		name      string
		readiness func(ctx context.Context) error
		want      bool
	}{
		{"no check", nil, true},
		{"supervisor answers", func(context.Context) error { return nil }, true},
		{"supervisor down", func(context.Context) error { return errors.New("connection refused") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewLocalContainer("spring-boot-app", t.TempDir())
			if tt.readiness != nil {
				c = c.WithReadiness(tt.readiness)
			}
			assert.Equal(t, tt.want, c.CanConnect(context.Background()))
		})
	}
}

func TestLocalContainer_ListArchive(t *testing.T) {
	root := t.TempDir()
	writeJar(t, root, "/app/app.jar", "BOOT-INF/lib/mysql-connector-j-8.0.33.jar", "BOOT-INF/classes/Main.class")

	c := NewLocalContainer("spring-boot-app", root)
	entries, err := c.ListArchive(context.Background(), "/app/app.jar")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"BOOT-INF/lib/mysql-connector-j-8.0.33.jar", "BOOT-INF/classes/Main.class"}, entries)

	_, err = c.ListArchive(context.Background(), "/app/missing.jar")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalContainer_Exec(t *testing.T) {
	old := execCommandContext
	execCommandContext = mockExecCommandContext
	defer func() { execCommandContext = old }()

	c := NewLocalContainer("spring-boot-app", t.TempDir())
	ctx := context.Background()

	result, err := c.Exec(ctx, []string{"java", "-version"}, map[string]string{"JAVA_TOOL_OPTIONS": "-Xmx1g"}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Contains(t, result.Stderr, "openjdk")

	result, err = c.Exec(ctx, []string{"java", "-version"}, map[string]string{"JAVA_TOOL_OPTIONS": "-Xbogus"}, 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ExitCode)
	assert.Contains(t, result.Stderr, "Unrecognized option")

	_, err = c.Exec(ctx, []string{"sleep"}, nil, 100*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = c.Exec(ctx, nil, nil, time.Second)
	assert.Error(t, err)
}

func TestEnvList(t *testing.T) {
	assert.Equal(t, []string{"A=1", "B=2"}, envList(map[string]string{"B": "2", "A": "1"}))
	assert.Empty(t, envList(nil))
}
