package workload

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a listed path does not exist in the container.
var ErrNotFound = errors.New("path not found")

// FileInfo describes one entry of a directory listing.
type FileInfo struct {
	Name  string
	IsDir bool
}

// ExecResult is the outcome of a command that ran to completion.
type ExecResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Container is the workload container as seen by the operator: a filesystem
// that can be inspected and a place to run short-lived commands.
type Container interface {
	// Name returns the container name in the pod.
	Name() string

	// CanConnect reports whether the container is reachable.
	CanConnect(ctx context.Context) bool

	// Exists reports whether path exists.
	Exists(ctx context.Context, path string) (bool, error)

	// IsDir reports whether path exists and is a directory.
	IsDir(ctx context.Context, path string) (bool, error)

	// ListFiles lists the immediate entries of a directory.
	// It returns ErrNotFound if the directory does not exist.
	ListFiles(ctx context.Context, path string) ([]FileInfo, error)

	// ListArchive returns the entry names of a zip based archive (jar).
	ListArchive(ctx context.Context, path string) ([]string, error)

	// Exec runs command with the given extra environment. A non-zero exit is
	// reported in the result, not as an error; errors mean the command could
	// not be run or did not finish within timeout.
	Exec(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (ExecResult, error)
}
