package appconfig

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"spring-boot-operator/internal/memory"
	"spring-boot-operator/internal/workload"
	"spring-boot-operator/pkg/logging"
)

// DryRunTimeout bounds the JVM flag probe.
const DryRunTimeout = 60 * time.Second

var (
	// ErrHeapExceedsQuota means -Xms or -Xmx is larger than the memory limit.
	ErrHeapExceedsQuota = errors.New("java heap exceeds memory quota")

	// ErrInvalidJVMConfig means the java launcher rejected the flags.
	ErrInvalidJVMConfig = errors.New("invalid jvm-config")

	initialHeapPattern = regexp.MustCompile(`-Xms(\S+)`)
	maxHeapPattern     = regexp.MustCompile(`-Xmx(\S+)`)
)

// Probe runs a command in the workload container.
type Probe func(ctx context.Context, command []string, env map[string]string, timeout time.Duration) (workload.ExecResult, error)

// JVMValidator checks a jvm-config value before it is handed to the service.
// Quota and Command are only called for a non-empty value.
type JVMValidator struct {
	// Quota returns the memory limit of the workload container.
	Quota func(ctx context.Context) (memory.Quota, error)

	// Command returns the start command of the detected application.
	Command func(ctx context.Context) ([]string, error)

	Probe Probe
}

// Resolve validates raw and returns the options to pass to the JVM.
func (v JVMValidator) Resolve(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	heap, err := MaxHeap(raw)
	if err != nil {
		return "", err
	}
	if heap > 0 {
		quota, err := v.Quota(ctx)
		if err != nil {
			return "", err
		}
		if !quota.Allows(heap) {
			logging.Error("ConfigResolver", nil, "Java heap of %d bytes exceeds memory quota of %s", heap, quota)
			return "", fmt.Errorf("%w: %d bytes requested, %s", ErrHeapExceedsQuota, heap, quota)
		}
	}

	command, err := v.Command(ctx)
	if err != nil {
		return "", err
	}
	if err := v.dryRun(ctx, raw, command); err != nil {
		return "", err
	}
	return raw, nil
}

func (v JVMValidator) dryRun(ctx context.Context, raw string, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("%w: no start command", ErrInvalidJVMConfig)
	}

	probe := make([]string, 0, len(command)+1)
	probe = append(probe, command[0], "-version")
	probe = append(probe, command[1:]...)

	result, err := v.Probe(ctx, probe, map[string]string{EnvJavaToolOptions: raw}, DryRunTimeout)
	if err != nil {
		logging.Error("ConfigResolver", err, "JVM dry run failed to complete")
		return fmt.Errorf("%w: %w", ErrInvalidJVMConfig, err)
	}
	if result.ExitCode != 0 {
		logging.Error("ConfigResolver", nil, "JVM dry run exited with %d: %s", result.ExitCode, result.Stderr)
		return fmt.Errorf("%w: java exited with code %d", ErrInvalidJVMConfig, result.ExitCode)
	}
	return nil
}

// MaxHeap returns the larger of the last -Xms and the last -Xmx value in
// options, or 0 when neither flag is present.
func MaxHeap(options string) (int64, error) {
	var heap int64
	for _, pattern := range []*regexp.Regexp{initialHeapPattern, maxHeapPattern} {
		matches := pattern.FindAllStringSubmatch(options, -1)
		if len(matches) == 0 {
			continue
		}
		value := matches[len(matches)-1][1]
		size, err := memory.ParseMemory(value)
		if err != nil {
			return 0, err
		}
		if size > heap {
			heap = size
		}
	}
	return heap, nil
}
