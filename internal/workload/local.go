package workload

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"spring-boot-operator/pkg/logging"
)

const localSubsystem = "LocalContainer"

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// LocalContainer is a container whose root filesystem is a local directory,
// for example an unpacked image or a shared volume. Commands run on the host
// with the root directory as working directory.
type LocalContainer struct {
	name      string
	root      string
	readiness func(ctx context.Context) error
}

// NewLocalContainer creates a container rooted at root.
func NewLocalContainer(name, root string) *LocalContainer {
	return &LocalContainer{name: name, root: root}
}

// WithReadiness adds a connectivity check that must pass for CanConnect.
func (c *LocalContainer) WithReadiness(check func(ctx context.Context) error) *LocalContainer {
	c.readiness = check
	return c
}

// Name implements Container.
func (c *LocalContainer) Name() string {
	return c.name
}

// hostPath maps an absolute container path into the root directory.
func (c *LocalContainer) hostPath(path string) string {
	return filepath.Join(c.root, filepath.FromSlash(strings.TrimPrefix(path, "/")))
}

// CanConnect implements Container.
func (c *LocalContainer) CanConnect(ctx context.Context) bool {
	info, err := os.Stat(c.root)
	if err != nil || !info.IsDir() {
		logging.Debug(localSubsystem, "Root %s is not a directory", c.root)
		return false
	}
	if c.readiness != nil {
		if err := c.readiness(ctx); err != nil {
			logging.Debug(localSubsystem, "Readiness check failed: %v", err)
			return false
		}
	}
	return true
}

// Exists implements Container.
func (c *LocalContainer) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(c.hostPath(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// IsDir implements Container.
func (c *LocalContainer) IsDir(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(c.hostPath(path))
	if err == nil {
		return info.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// ListFiles implements Container.
func (c *LocalContainer) ListFiles(ctx context.Context, path string) ([]FileInfo, error) {
	entries, err := os.ReadDir(c.hostPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		files = append(files, FileInfo{Name: entry.Name(), IsDir: entry.IsDir()})
	}
	return files, nil
}

// ListArchive implements Container.
func (c *LocalContainer) ListArchive(ctx context.Context, path string) ([]string, error) {
	reader, err := zip.OpenReader(c.hostPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// Exec implements Container.
func (c *LocalContainer) Exec(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (ExecResult, error) {
	if len(command) == 0 {
		return ExecResult{}, fmt.Errorf("empty command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := execCommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = c.root
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	cmd.Env = append(cmd.Env, envList(env)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Debug(localSubsystem, "Running %s", strings.Join(command, " "))
	err := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return ExecResult{}, fmt.Errorf("command %s timed out after %v: %w", command[0], timeout, ctx.Err())
	}

	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return ExecResult{}, fmt.Errorf("failed to run %s: %w", command[0], err)
	}
	return result, nil
}

// envList renders env as sorted KEY=VALUE pairs.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
