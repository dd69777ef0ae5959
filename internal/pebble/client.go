package pebble

import (
	"context"
	"fmt"

	pebbleclient "github.com/canonical/pebble/client"

	"spring-boot-operator/pkg/logging"
)

const (
	subsystem = "Pebble"

	// DefaultSocket is where Pebble listens in a sidecar container.
	DefaultSocket = "/charm/containers/spring-boot-app/pebble.socket"
)

// Client talks to the Pebble daemon through the upstream Pebble client.
type Client struct {
	pebble *pebbleclient.Client
}

// NewClient returns a client for the Pebble daemon listening on socket.
func NewClient(socket string) (*Client, error) {
	return newClient(&pebbleclient.Config{Socket: socket})
}

// NewClientWithBaseURL returns a client speaking HTTP to baseURL instead of
// a unix socket.
func NewClientWithBaseURL(baseURL string) (*Client, error) {
	return newClient(&pebbleclient.Config{BaseURL: baseURL})
}

func newClient(cfg *pebbleclient.Config) (*Client, error) {
	c, err := pebbleclient.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pebble client: %w", err)
	}
	return &Client{pebble: c}, nil
}

// call runs fn and gives up waiting once ctx is done. The upstream client
// does not take a context.
func call[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn()
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Ping checks that the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	_, err := call(ctx, c.pebble.SysInfo)
	if err != nil {
		return fmt.Errorf("failed to reach pebble: %w", err)
	}
	return nil
}

// AddLayer adds layer under label. With combine set an existing layer with
// the same label is merged according to each entry's override policy.
func (c *Client) AddLayer(ctx context.Context, label string, layer Layer, combine bool) error {
	doc, err := layer.Marshal()
	if err != nil {
		return err
	}

	_, err = call(ctx, func() (struct{}, error) {
		return struct{}{}, c.pebble.AddLayer(&pebbleclient.AddLayerOptions{
			Combine:   combine,
			Label:     label,
			LayerData: doc,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to add layer %s: %w", label, err)
	}
	logging.Debug(subsystem, "Added layer %s", label)
	return nil
}

// Replan starts, restarts or stops services to match the current plan.
// It returns the ID of the asynchronous change.
func (c *Client) Replan(ctx context.Context) (string, error) {
	change, err := call(ctx, func() (string, error) {
		return c.pebble.Replan(&pebbleclient.ServiceOptions{})
	})
	if err != nil {
		return "", fmt.Errorf("failed to replan: %w", err)
	}
	logging.Debug(subsystem, "Replan submitted as change %s", change)
	return change, nil
}

// Plan returns the combined plan as a layer.
func (c *Client) Plan(ctx context.Context) (Layer, error) {
	doc, err := call(ctx, func() ([]byte, error) {
		return c.pebble.PlanBytes(&pebbleclient.PlanOptions{})
	})
	if err != nil {
		return Layer{}, fmt.Errorf("failed to get plan: %w", err)
	}
	return ParseLayer(doc)
}
