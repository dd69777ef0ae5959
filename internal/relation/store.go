package relation

import (
	"context"
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"spring-boot-operator/pkg/logging"
)

const (
	subsystem = "RelationStore"

	// LabelManagedBy marks objects written by the operator.
	LabelManagedBy = "app.kubernetes.io/managed-by"

	// LabelApplication names the application that published an object.
	LabelApplication = "app.kubernetes.io/name"

	managedBy = "spring-boot-operator"
)

// Reader returns the data of every unit related over a relation.
type Reader interface {
	Relations(ctx context.Context, relation string) ([]map[string]string, error)
}

// Publisher writes and removes the data this unit offers over a relation.
type Publisher interface {
	Publish(ctx context.Context, relation, name string, data map[string]string) error
	Retract(ctx context.Context, name string) error
}

// KubeStore exchanges relation data through Kubernetes objects.
//
// Providers publish their side as Secrets labelled with labelKey=<relation>;
// entries are returned ordered by Secret name so "the first relation" is
// stable across passes. This unit publishes its side as a ConfigMap.
type KubeStore struct {
	client    client.Client
	namespace string
	labelKey  string
	app       string
}

// NewKubeStore creates a store working in namespace.
func NewKubeStore(c client.Client, namespace, labelKey, app string) *KubeStore {
	return &KubeStore{
		client:    c,
		namespace: namespace,
		labelKey:  labelKey,
		app:       app,
	}
}

// Relations implements Reader.
func (s *KubeStore) Relations(ctx context.Context, relation string) ([]map[string]string, error) {
	var secrets corev1.SecretList
	err := s.client.List(ctx, &secrets,
		client.InNamespace(s.namespace),
		client.MatchingLabels{s.labelKey: relation},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s relation data: %w", relation, err)
	}

	items := secrets.Items
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })

	result := make([]map[string]string, 0, len(items))
	for _, secret := range items {
		if secret.DeletionTimestamp != nil {
			continue
		}
		data := make(map[string]string, len(secret.Data)+len(secret.StringData))
		for k, v := range secret.Data {
			data[k] = string(v)
		}
		for k, v := range secret.StringData {
			data[k] = v
		}
		result = append(result, data)
	}

	logging.Debug(subsystem, "Found %d %s relation(s) in %s", len(result), relation, s.namespace)
	return result, nil
}

// Publish implements Publisher. The ConfigMap is created or its data replaced.
func (s *KubeStore) Publish(ctx context.Context, relation, name string, data map[string]string) error {
	cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: s.namespace}}

	op, err := controllerutil.CreateOrUpdate(ctx, s.client, cm, func() error {
		if cm.Labels == nil {
			cm.Labels = map[string]string{}
		}
		cm.Labels[s.labelKey] = relation
		cm.Labels[LabelManagedBy] = managedBy
		cm.Labels[LabelApplication] = s.app

		cm.Data = make(map[string]string, len(data))
		for k, v := range data {
			cm.Data[k] = v
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish %s relation data: %w", relation, err)
	}

	logging.Debug(subsystem, "Published %s relation data to ConfigMap %s (%s)", relation, name, op)
	return nil
}

// Retract implements Publisher. Retracting data that was never published is
// not an error.
func (s *KubeStore) Retract(ctx context.Context, name string) error {
	cm := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: s.namespace}}
	if err := s.client.Delete(ctx, cm); err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("failed to retract ConfigMap %s: %w", name, err)
	}
	logging.Debug(subsystem, "Retracted ConfigMap %s", name)
	return nil
}
