package mock

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"spring-boot-operator/internal/workload"
)

// ExecCall records one command run through Container.Exec.
type ExecCall struct {
	Command []string
	Env     map[string]string
	Timeout time.Duration
}

// ExecHandler produces the result of a command matched by a registered prefix.
type ExecHandler func(call ExecCall) (workload.ExecResult, error)

type execRoute struct {
	prefix  []string
	handler ExecHandler
}

// Container is an in-memory workload.Container.
//
// Paths are absolute and slash separated. Parent directories are created
// implicitly. Commands are answered by handlers registered with HandleExec;
// when several handlers match, the most recently registered one wins.
type Container struct {
	mu sync.Mutex

	name      string
	connected bool
	files     map[string]bool // path -> isDir
	archives  map[string][]string
	routes    []execRoute
	calls     []ExecCall
	errs      map[string]error
}

var _ workload.Container = (*Container)(nil)

// NewContainer creates a connectable, empty container.
func NewContainer(name string) *Container {
	return &Container{
		name:      name,
		connected: true,
		files:     map[string]bool{"/": true},
		archives:  map[string][]string{},
		errs:      map[string]error{},
	}
}

// SetConnected toggles the result of CanConnect.
func (c *Container) SetConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
}

// AddFile creates an empty regular file.
func (c *Container) AddFile(p string) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addParents(p)
	c.files[path.Clean(p)] = false
	return c
}

// AddDir creates a directory.
func (c *Container) AddDir(p string) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addParents(p)
	c.files[path.Clean(p)] = true
	return c
}

// AddArchive creates a jar file with the given entry names.
func (c *Container) AddArchive(p string, entries ...string) *Container {
	c.AddFile(p)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archives[path.Clean(p)] = append([]string(nil), entries...)
	return c
}

// FailPath makes every filesystem operation on p return err.
func (c *Container) FailPath(p string, err error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[path.Clean(p)] = err
	return c
}

// HandleExec registers handler for commands starting with prefix.
func (c *Container) HandleExec(prefix []string, handler ExecHandler) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.routes = append(c.routes, execRoute{prefix: prefix, handler: handler})
	return c
}

// ExecCalls returns the commands run so far.
func (c *Container) ExecCalls() []ExecCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ExecCall(nil), c.calls...)
}

func (c *Container) addParents(p string) {
	for dir := path.Dir(path.Clean(p)); ; dir = path.Dir(dir) {
		c.files[dir] = true
		if dir == "/" || dir == "." {
			return
		}
	}
}

func (c *Container) Name() string {
	return c.name
}

func (c *Container) CanConnect(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Container) Exists(ctx context.Context, p string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p = path.Clean(p)
	if err := c.errs[p]; err != nil {
		return false, err
	}
	_, ok := c.files[p]
	return ok, nil
}

func (c *Container) IsDir(ctx context.Context, p string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p = path.Clean(p)
	if err := c.errs[p]; err != nil {
		return false, err
	}
	return c.files[p], nil
}

func (c *Container) ListFiles(ctx context.Context, p string) ([]workload.FileInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p = path.Clean(p)
	if err := c.errs[p]; err != nil {
		return nil, err
	}
	if isDir, ok := c.files[p]; !ok || !isDir {
		return nil, fmt.Errorf("%w: %s", workload.ErrNotFound, p)
	}

	var files []workload.FileInfo
	for candidate, isDir := range c.files {
		if candidate != p && path.Dir(candidate) == p {
			files = append(files, workload.FileInfo{Name: path.Base(candidate), IsDir: isDir})
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

func (c *Container) ListArchive(ctx context.Context, p string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p = path.Clean(p)
	if err := c.errs[p]; err != nil {
		return nil, err
	}
	entries, ok := c.archives[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workload.ErrNotFound, p)
	}
	return append([]string(nil), entries...), nil
}

func (c *Container) Exec(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (workload.ExecResult, error) {
	c.mu.Lock()
	call := ExecCall{Command: append([]string(nil), command...), Env: copyEnv(env), Timeout: timeout}
	c.calls = append(c.calls, call)

	var handler ExecHandler
	for i := len(c.routes) - 1; i >= 0; i-- {
		if hasPrefix(command, c.routes[i].prefix) {
			handler = c.routes[i].handler
			break
		}
	}
	c.mu.Unlock()

	if handler == nil {
		return workload.ExecResult{}, fmt.Errorf("unexpected command: %s", strings.Join(command, " "))
	}
	return handler(call)
}

func hasPrefix(command, prefix []string) bool {
	if len(prefix) > len(command) {
		return false
	}
	for i := range prefix {
		if command[i] != prefix[i] {
			return false
		}
	}
	return true
}

func copyEnv(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = v
	}
	return out
}

// ExitWith returns a handler that exits with code.
func ExitWith(code int) ExecHandler {
	return func(ExecCall) (workload.ExecResult, error) {
		return workload.ExecResult{ExitCode: code}, nil
	}
}
