package mock

import (
	"context"
	"sync"

	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/memory"
)

// Oracle is a memory.Oracle returning a fixed answer.
type Oracle struct {
	mu    sync.Mutex
	quota memory.Quota
	err   error
	calls []string
}

// NewOracle creates an oracle reporting quota for every container.
func NewOracle(quota memory.Quota) *Oracle {
	return &Oracle{quota: quota}
}

// FailingOracle creates an oracle that always returns err.
func FailingOracle(err error) *Oracle {
	return &Oracle{err: err}
}

func (o *Oracle) Quota(ctx context.Context, containerName string) (memory.Quota, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, containerName)
	if o.err != nil {
		return memory.Quota{}, o.err
	}
	return o.quota, nil
}

// Calls returns the container names queried so far.
func (o *Oracle) Calls() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.calls...)
}

// StaticOptions returns an options source that always yields options.
func StaticOptions(options config.Options) func(context.Context) (config.Options, error) {
	return func(context.Context) (config.Options, error) {
		return options, nil
	}
}
