package reconciler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
	toolscache "k8s.io/client-go/tools/cache"
)

const testLabelKey = "spring-boot-operator/relation"

func newTestKubernetesDetector(t *testing.T) (*KubernetesDetector, chan Event) {
	t.Helper()

	detector := NewKubernetesDetector(nil, KubernetesDetectorConfig{
		Namespace:     "apps",
		PodName:       "spring-boot-0",
		ContainerName: "spring-boot-app",
		LabelKey:      testLabelKey,
		Relations:     []string{"mysql_client", "nginx_ingress"},
	})

	events := make(chan Event, 10)
	detector.events = events
	detector.running = true
	return detector, events
}

func relationSecret(name, relation string) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: "apps",
			Labels:    map[string]string{testLabelKey: relation},
		},
	}
}

func unitPod(name string, ready bool) *corev1.Pod {
	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: "apps"},
		Status: corev1.PodStatus{
			ContainerStatuses: []corev1.ContainerStatus{
				{Name: "charm", Ready: true},
				{Name: "spring-boot-app", Ready: ready},
			},
		},
	}
}

func receive(t *testing.T, events <-chan Event) Event {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, events <-chan Event) {
	t.Helper()
	select {
	case event := <-events:
		t.Fatalf("unexpected event %s", event)
	default:
	}
}

func TestNewKubernetesDetector(t *testing.T) {
	detector := NewKubernetesDetector(nil, KubernetesDetectorConfig{
		Namespace: "apps",
		LabelKey:  testLabelKey,
		Relations: []string{"mysql_client"},
	})

	require.NotNil(t, detector)
	assert.Equal(t, "apps", detector.namespace)
	assert.NotNil(t, detector.scheme)
	assert.True(t, detector.relations["mysql_client"])
	assert.Equal(t, SourceKubernetes, detector.GetSource())
}

func TestKubernetesDetectorStopWithoutStart(t *testing.T) {
	detector := NewKubernetesDetector(nil, KubernetesDetectorConfig{LabelKey: testLabelKey})
	assert.NoError(t, detector.Stop())
}

func TestKubernetesDetectorCacheOptions(t *testing.T) {
	detector, _ := newTestKubernetesDetector(t)

	opts, err := detector.cacheOptions()
	require.NoError(t, err)

	assert.Contains(t, opts.DefaultNamespaces, "apps")
	require.Len(t, opts.ByObject, 2)

	for obj, byObject := range opts.ByObject {
		switch obj.(type) {
		case *corev1.Secret:
			require.NotNil(t, byObject.Label)
			assert.True(t, byObject.Label.Matches(labels.Set{testLabelKey: "mysql_client"}))
			assert.False(t, byObject.Label.Matches(labels.Set{"app": "other"}))
		case *corev1.Pod:
			require.NotNil(t, byObject.Field)
			assert.Equal(t, "metadata.name=spring-boot-0", byObject.Field.String())
		default:
			t.Errorf("unexpected cached object %T", obj)
		}
	}
}

func TestKubernetesDetectorCacheOptionsInvalidLabel(t *testing.T) {
	detector := NewKubernetesDetector(nil, KubernetesDetectorConfig{LabelKey: "not a label!"})
	_, err := detector.cacheOptions()
	assert.Error(t, err)
}

func TestKubernetesDetectorSecretEvents(t *testing.T) {
	tests := []struct {
		name     string
		kind     EventKind
		obj      interface{}
		wantName string
	}{
		{
			name:     "database secret added",
			kind:     EventRelationReady,
			obj:      relationSecret("mysql-0", "mysql_client"),
			wantName: "mysql_client-ready",
		},
		{
			name:     "ingress secret deleted",
			kind:     EventRelationBroken,
			obj:      relationSecret("nginx-0", "nginx_ingress"),
			wantName: "nginx_ingress-relation-broken",
		},
		{
			name: "deleted while watch was down",
			kind: EventRelationBroken,
			obj: toolscache.DeletedFinalStateUnknown{
				Key: "apps/mysql-0",
				Obj: relationSecret("mysql-0", "mysql_client"),
			},
			wantName: "mysql_client-relation-broken",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detector, events := newTestKubernetesDetector(t)

			detector.handleSecret(tt.kind, tt.obj)

			event := receive(t, events)
			assert.Equal(t, tt.wantName, event.Name())
			assert.Equal(t, SourceKubernetes, event.Source)
			assert.Equal(t, 1, event.Attempt)
			assert.NotEmpty(t, event.ID)
		})
	}
}

func TestKubernetesDetectorIgnoresUnwatchedRelations(t *testing.T) {
	detector, events := newTestKubernetesDetector(t)

	detector.handleSecret(EventRelationReady, relationSecret("redis-0", "redis"))
	detector.handleSecret(EventRelationReady, &corev1.ConfigMap{})

	assertNoEvent(t, events)
}

func TestKubernetesDetectorWorkloadReady(t *testing.T) {
	detector, events := newTestKubernetesDetector(t)

	detector.handlePod(unitPod("spring-boot-0", false))
	assertNoEvent(t, events)

	detector.handlePod(unitPod("spring-boot-0", true))
	event := receive(t, events)
	assert.Equal(t, EventWorkloadReady, event.Kind)

	// Still ready: no new event
	detector.handlePod(unitPod("spring-boot-0", true))
	assertNoEvent(t, events)

	// Restarted container becomes ready again
	detector.handlePod(unitPod("spring-boot-0", false))
	detector.handlePod(unitPod("spring-boot-0", true))
	assert.Equal(t, EventWorkloadReady, receive(t, events).Kind)
}

func TestKubernetesDetectorIgnoresOtherPods(t *testing.T) {
	detector, events := newTestKubernetesDetector(t)

	detector.handlePod(unitPod("spring-boot-1", true))
	assertNoEvent(t, events)
}

func TestKubernetesDetectorDropsEventsWhenStopped(t *testing.T) {
	detector, events := newTestKubernetesDetector(t)
	detector.running = false

	detector.handleSecret(EventRelationReady, relationSecret("mysql-0", "mysql_client"))
	assertNoEvent(t, events)
}

func TestKubernetesDetectorFullChannel(t *testing.T) {
	detector := NewKubernetesDetector(nil, KubernetesDetectorConfig{
		LabelKey:  testLabelKey,
		Relations: []string{"mysql_client"},
	})
	events := make(chan Event, 1)
	detector.events = events
	detector.running = true

	detector.handleSecret(EventRelationReady, relationSecret("mysql-0", "mysql_client"))
	// Dropped rather than blocking the informer
	detector.handleSecret(EventRelationReady, relationSecret("mysql-1", "mysql_client"))

	assert.Len(t, events, 1)
}
