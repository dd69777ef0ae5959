package memory

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"spring-boot-operator/pkg/logging"
)

// Quota is a container memory limit. The zero value is unconstrained.
type Quota struct {
	bytes   int64
	limited bool
}

// Unconstrained returns a quota without a memory limit.
func Unconstrained() Quota {
	return Quota{}
}

// Limit returns a quota of the given number of bytes.
func Limit(bytes int64) Quota {
	return Quota{bytes: bytes, limited: true}
}

// Bytes returns the limit and whether one is set.
func (q Quota) Bytes() (int64, bool) {
	return q.bytes, q.limited
}

// Allows reports whether a heap of the given size fits in the quota.
func (q Quota) Allows(heap int64) bool {
	return !q.limited || heap <= q.bytes
}

func (q Quota) String() string {
	if !q.limited {
		return "unconstrained"
	}
	return fmt.Sprintf("%d bytes", q.bytes)
}

// Oracle reports the memory limit of a container in the unit's pod.
type Oracle interface {
	Quota(ctx context.Context, containerName string) (Quota, error)
}

// Static is an Oracle returning the same quota for every container. It
// serves offline planning where no pod exists.
type Static Quota

// Quota implements Oracle.
func (s Static) Quota(ctx context.Context, containerName string) (Quota, error) {
	return Quota(s), nil
}

// PodQuota reads memory limits from the live pod specification.
// Nothing is cached; every call goes to the API server.
type PodQuota struct {
	client    kubernetes.Interface
	namespace string
	podName   string
}

// NewPodQuota creates an oracle for the given pod.
func NewPodQuota(client kubernetes.Interface, namespace, podName string) *PodQuota {
	return &PodQuota{
		client:    client,
		namespace: namespace,
		podName:   podName,
	}
}

// Quota implements Oracle.
func (p *PodQuota) Quota(ctx context.Context, containerName string) (Quota, error) {
	pod, err := p.client.CoreV1().Pods(p.namespace).Get(ctx, p.podName, metav1.GetOptions{})
	if err != nil {
		return Quota{}, fmt.Errorf("failed to get pod %s/%s: %w", p.namespace, p.podName, err)
	}

	container, ok := findContainer(pod, containerName)
	if !ok {
		return Quota{}, fmt.Errorf("container %s not found in pod %s/%s", containerName, p.namespace, p.podName)
	}

	limit, ok := container.Resources.Limits[corev1.ResourceMemory]
	if !ok {
		logging.Debug("QuotaOracle", "No memory limit set on container %s", containerName)
		return Unconstrained(), nil
	}

	bytes, err := ParseQuantity(limit.String())
	if err != nil {
		return Quota{}, fmt.Errorf("memory limit of container %s: %w", containerName, err)
	}

	logging.Debug("QuotaOracle", "Container %s memory limit is %s (%d bytes)", containerName, limit.String(), bytes)
	return Limit(bytes), nil
}

func findContainer(pod *corev1.Pod, name string) (corev1.Container, bool) {
	for _, c := range pod.Spec.Containers {
		if c.Name == name {
			return c, true
		}
	}
	return corev1.Container{}, false
}
