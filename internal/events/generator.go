package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"spring-boot-operator/internal/unit"
	"spring-boot-operator/pkg/logging"
)

// Component is the event source reported on every event.
const Component = "spring-boot-operator"

// EventGenerator records Kubernetes Events on the unit's pod whenever the
// unit settles in a new status. It implements unit.Sink.
//
// Maintenance is transient within a pass and produces no event, and a
// status equal to the last recorded one is skipped, so a steady unit does
// not flood the event stream.
type EventGenerator struct {
	client    client.Client
	namespace string
	podName   string
	appName   string
	templates *MessageTemplateEngine

	mu   sync.Mutex
	last unit.Status
}

// NewEventGenerator creates a generator for the given pod.
func NewEventGenerator(c client.Client, namespace, podName, appName string) *EventGenerator {
	return &EventGenerator{
		client:    c,
		namespace: namespace,
		podName:   podName,
		appName:   appName,
		templates: NewMessageTemplateEngine(),
	}
}

// SetStatus implements unit.Sink.
func (g *EventGenerator) SetStatus(ctx context.Context, status unit.Status) error {
	reason, ok := reasonFor(status.Phase)
	if !ok {
		return nil
	}

	g.mu.Lock()
	if g.last == status {
		g.mu.Unlock()
		return nil
	}
	g.mu.Unlock()

	message := g.templates.Render(reason, EventData{Name: g.appName, Message: status.Message})
	if err := g.createEvent(ctx, reason, message); err != nil {
		return err
	}

	g.mu.Lock()
	g.last = status
	g.mu.Unlock()
	return nil
}

func (g *EventGenerator) createEvent(ctx context.Context, reason EventReason, message string) error {
	pod := &corev1.Pod{}
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: g.namespace, Name: g.podName}, pod); err != nil {
		return fmt.Errorf("failed to get pod %s/%s: %w", g.namespace, g.podName, err)
	}

	eventType := string(getEventType(reason))
	logging.Debug("Events", "Generating pod event: reason=%s, message=%s, type=%s", reason, message, eventType)

	now := metav1.NewTime(time.Now())
	event := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: g.podName + "-",
			Namespace:    g.namespace,
		},
		InvolvedObject: corev1.ObjectReference{
			APIVersion: "v1",
			Kind:       "Pod",
			Name:       pod.Name,
			Namespace:  pod.Namespace,
			UID:        pod.UID,
		},
		Reason:         string(reason),
		Message:        message,
		Type:           eventType,
		Source:         corev1.EventSource{Component: Component},
		FirstTimestamp: now,
		LastTimestamp:  now,
		Count:          1,
	}

	if err := g.client.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create Kubernetes Event: %w", err)
	}
	return nil
}
