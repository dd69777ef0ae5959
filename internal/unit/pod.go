package unit

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

const (
	// AnnotationPhase holds the status phase on the unit's pod.
	AnnotationPhase = "spring-boot-operator/status"

	// AnnotationMessage holds the status message on the unit's pod.
	AnnotationMessage = "spring-boot-operator/status-message"
)

// PodAnnotationSink writes the status as annotations on the unit's pod.
type PodAnnotationSink struct {
	client    client.Client
	namespace string
	name      string
}

// NewPodAnnotationSink creates a sink for the given pod.
func NewPodAnnotationSink(c client.Client, namespace, name string) *PodAnnotationSink {
	return &PodAnnotationSink{client: c, namespace: namespace, name: name}
}

// SetStatus implements Sink.
func (s *PodAnnotationSink) SetStatus(ctx context.Context, status Status) error {
	pod := &corev1.Pod{}
	if err := s.client.Get(ctx, client.ObjectKey{Namespace: s.namespace, Name: s.name}, pod); err != nil {
		return fmt.Errorf("failed to get pod %s/%s: %w", s.namespace, s.name, err)
	}

	if pod.Annotations[AnnotationPhase] == string(status.Phase) && pod.Annotations[AnnotationMessage] == status.Message {
		return nil
	}

	base := pod.DeepCopy()
	if pod.Annotations == nil {
		pod.Annotations = map[string]string{}
	}
	pod.Annotations[AnnotationPhase] = string(status.Phase)
	if status.Message == "" {
		delete(pod.Annotations, AnnotationMessage)
	} else {
		pod.Annotations[AnnotationMessage] = status.Message
	}

	if err := s.client.Patch(ctx, pod, client.MergeFrom(base)); err != nil {
		return fmt.Errorf("failed to annotate pod %s/%s: %w", s.namespace, s.name, err)
	}
	return nil
}
