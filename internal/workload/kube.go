package workload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/remotecommand"
	utilexec "k8s.io/client-go/util/exec"

	"spring-boot-operator/pkg/logging"
)

const kubeSubsystem = "KubeContainer"

// streamFunc runs command in the container, copying its output to stdout and
// stderr. A non-zero exit must be reported as a utilexec.ExitError.
type streamFunc func(ctx context.Context, command []string, stdout, stderr io.Writer) error

// KubeContainer is a container of the unit's own pod, inspected through the
// pod exec subresource.
type KubeContainer struct {
	client    kubernetes.Interface
	namespace string
	podName   string
	name      string
	stream    streamFunc

	// readiness is an optional extra connectivity check, typically a ping of
	// the process supervisor running inside the container.
	readiness func(ctx context.Context) error
}

// NewKubeContainer creates a container handle for container name of the given pod.
func NewKubeContainer(restConfig *rest.Config, client kubernetes.Interface, namespace, podName, name string) *KubeContainer {
	c := &KubeContainer{
		client:    client,
		namespace: namespace,
		podName:   podName,
		name:      name,
	}
	c.stream = c.spdyStream(restConfig)
	return c
}

// WithReadiness adds a connectivity check that must pass for CanConnect.
func (c *KubeContainer) WithReadiness(check func(ctx context.Context) error) *KubeContainer {
	c.readiness = check
	return c
}

func (c *KubeContainer) spdyStream(restConfig *rest.Config) streamFunc {
	return func(ctx context.Context, command []string, stdout, stderr io.Writer) error {
		req := c.client.CoreV1().RESTClient().Post().
			Resource("pods").
			Namespace(c.namespace).
			Name(c.podName).
			SubResource("exec").
			VersionedParams(&corev1.PodExecOptions{
				Container: c.name,
				Command:   command,
				Stdout:    true,
				Stderr:    true,
			}, scheme.ParameterCodec)

		executor, err := remotecommand.NewSPDYExecutor(restConfig, "POST", req.URL())
		if err != nil {
			return fmt.Errorf("failed to create executor: %w", err)
		}
		return executor.StreamWithContext(ctx, remotecommand.StreamOptions{
			Stdout: stdout,
			Stderr: stderr,
		})
	}
}

// Name implements Container.
func (c *KubeContainer) Name() string {
	return c.name
}

// CanConnect implements Container.
func (c *KubeContainer) CanConnect(ctx context.Context) bool {
	pod, err := c.client.CoreV1().Pods(c.namespace).Get(ctx, c.podName, metav1.GetOptions{})
	if err != nil {
		logging.Debug(kubeSubsystem, "Failed to get pod %s/%s: %v", c.namespace, c.podName, err)
		return false
	}

	running := false
	for _, status := range pod.Status.ContainerStatuses {
		if status.Name == c.name && status.State.Running != nil {
			running = true
			break
		}
	}
	if !running {
		logging.Debug(kubeSubsystem, "Container %s is not running", c.name)
		return false
	}

	if c.readiness != nil {
		if err := c.readiness(ctx); err != nil {
			logging.Debug(kubeSubsystem, "Container %s readiness check failed: %v", c.name, err)
			return false
		}
	}
	return true
}

// run executes command and returns its result; only transport failures are errors.
func (c *KubeContainer) run(ctx context.Context, command []string) (ExecResult, error) {
	var stdout, stderr bytes.Buffer
	err := c.stream(ctx, command, &stdout, &stderr)

	result := ExecResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr utilexec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return ExecResult{}, fmt.Errorf("exec %s in %s/%s: %w", command[0], c.podName, c.name, err)
	}
	return result, nil
}

// test runs "test <flag> path" and reports whether it succeeded.
func (c *KubeContainer) test(ctx context.Context, flag, path string) (bool, error) {
	result, err := c.run(ctx, []string{"test", flag, path})
	if err != nil {
		return false, err
	}
	return result.ExitCode == 0, nil
}

// Exists implements Container.
func (c *KubeContainer) Exists(ctx context.Context, path string) (bool, error) {
	return c.test(ctx, "-e", path)
}

// IsDir implements Container.
func (c *KubeContainer) IsDir(ctx context.Context, path string) (bool, error) {
	return c.test(ctx, "-d", path)
}

// ListFiles implements Container.
func (c *KubeContainer) ListFiles(ctx context.Context, path string) ([]FileInfo, error) {
	isDir, err := c.IsDir(ctx, path)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	result, err := c.run(ctx, []string{"ls", "-1Ap", path})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("failed to list %s: %s", path, strings.TrimSpace(result.Stderr))
	}
	return parseListing(result.Stdout), nil
}

// parseListing parses "ls -1Ap" output, where directories carry a trailing slash.
func parseListing(output string) []FileInfo {
	var files []FileInfo
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if strings.HasSuffix(line, "/") {
			files = append(files, FileInfo{Name: strings.TrimSuffix(line, "/"), IsDir: true})
			continue
		}
		files = append(files, FileInfo{Name: line})
	}
	return files
}

// ListArchive implements Container.
func (c *KubeContainer) ListArchive(ctx context.Context, path string) ([]string, error) {
	result, err := c.run(ctx, []string{"unzip", "-Z1", path})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("failed to list archive %s: %s", path, strings.TrimSpace(result.Stderr))
	}

	var names []string
	for _, line := range strings.Split(result.Stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// Exec implements Container.
func (c *KubeContainer) Exec(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (ExecResult, error) {
	if len(command) == 0 {
		return ExecResult{}, fmt.Errorf("empty command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	full := command
	if len(env) > 0 {
		full = append(append([]string{"env"}, envList(env)...), command...)
	}

	logging.Debug(kubeSubsystem, "Running %s in %s", strings.Join(command, " "), c.name)
	result, err := c.run(ctx, full)
	if ctx.Err() == context.DeadlineExceeded {
		return ExecResult{}, fmt.Errorf("command %s timed out after %v: %w", command[0], timeout, ctx.Err())
	}
	return result, err
}
