package reconciler

import (
	"context"
	"fmt"
	"sync"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/fields"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	toolscache "k8s.io/client-go/tools/cache"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"spring-boot-operator/pkg/logging"
)

const kubeDetectorSubsystem = "KubernetesDetector"

// KubernetesDetector implements ChangeDetector using controller-runtime informers.
//
// It watches two kinds of objects in the unit's namespace:
//   - Secrets labelled with the relation label. Adds and updates of a watched
//     relation emit relation-ready, deletes emit relation-broken.
//   - The unit's own Pod. The workload container turning ready emits
//     workload-ready.
type KubernetesDetector struct {
	mu sync.RWMutex

	// restConfig is the Kubernetes REST configuration
	restConfig *rest.Config

	// namespace is the unit's namespace
	namespace string

	// podName is the unit's pod
	podName string

	// containerName is the workload container within the pod
	containerName string

	// labelKey is the label carrying the relation name
	labelKey string

	// relations is the set of relation names that produce events
	relations map[string]bool

	// cache is the controller-runtime cache for watching resources
	cache cache.Cache

	// scheme is the runtime scheme with registered types
	scheme *runtime.Scheme

	// events is the channel to send events to
	events chan<- Event

	// containerReady is the last observed readiness of the workload container
	containerReady bool

	// ctx is the detector's context
	ctx context.Context

	// cancelFunc cancels the detector's context
	cancelFunc context.CancelFunc

	// running indicates if the detector is active
	running bool

	// informerRegistrations tracks registered event handlers for cleanup
	informerRegistrations []toolscache.ResourceEventHandlerRegistration
}

// KubernetesDetectorConfig names the objects a KubernetesDetector watches.
type KubernetesDetectorConfig struct {
	Namespace     string
	PodName       string
	ContainerName string
	LabelKey      string
	Relations     []string
}

// NewKubernetesDetector creates a new Kubernetes change detector.
func NewKubernetesDetector(restConfig *rest.Config, config KubernetesDetectorConfig) *KubernetesDetector {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	relations := make(map[string]bool, len(config.Relations))
	for _, name := range config.Relations {
		relations[name] = true
	}

	return &KubernetesDetector{
		restConfig:            restConfig,
		namespace:             config.Namespace,
		podName:               config.PodName,
		containerName:         config.ContainerName,
		labelKey:              config.LabelKey,
		relations:             relations,
		scheme:                scheme,
		informerRegistrations: make([]toolscache.ResourceEventHandlerRegistration, 0),
	}
}

// cacheOptions restricts the cache to the unit's namespace, the labelled
// Secrets and the unit's own Pod.
func (d *KubernetesDetector) cacheOptions() (cache.Options, error) {
	secretSelector, err := labels.Parse(d.labelKey)
	if err != nil {
		return cache.Options{}, fmt.Errorf("invalid relation label %q: %w", d.labelKey, err)
	}

	return cache.Options{
		Scheme: d.scheme,
		DefaultNamespaces: map[string]cache.Config{
			d.namespace: {},
		},
		ByObject: map[client.Object]cache.ByObject{
			&corev1.Secret{}: {Label: secretSelector},
			&corev1.Pod{}:    {Field: fields.OneTermEqualSelector("metadata.name", d.podName)},
		},
	}, nil
}

// Start begins watching for Kubernetes resource changes.
func (d *KubernetesDetector) Start(ctx context.Context, events chan<- Event) error {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return nil
	}

	d.ctx, d.cancelFunc = context.WithCancel(ctx)
	d.events = events
	d.running = true
	d.mu.Unlock()

	cacheOpts, err := d.cacheOptions()
	if err != nil {
		d.abortStart()
		return err
	}

	c, err := cache.New(d.restConfig, cacheOpts)
	if err != nil {
		d.abortStart()
		return fmt.Errorf("failed to create cache: %w", err)
	}

	d.mu.Lock()
	d.cache = c
	d.mu.Unlock()

	if err := d.setupInformers(); err != nil {
		d.abortStart()
		return fmt.Errorf("failed to setup informers: %w", err)
	}

	go func() {
		if err := c.Start(d.ctx); err != nil {
			logging.Error(kubeDetectorSubsystem, err, "Cache stopped with error")
		}
	}()

	if !c.WaitForCacheSync(d.ctx) {
		d.abortStart()
		return fmt.Errorf("failed to sync cache")
	}

	logging.Info(kubeDetectorSubsystem, "Started watching relations and pod %s in namespace %s", d.podName, d.namespace)
	return nil
}

func (d *KubernetesDetector) abortStart() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.running = false
	if d.cancelFunc != nil {
		d.cancelFunc()
	}
}

// setupInformers registers the Secret and Pod handlers.
func (d *KubernetesDetector) setupInformers() error {
	secretHandler := toolscache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			d.handleSecret(EventRelationReady, obj)
		},
		UpdateFunc: func(_, newObj interface{}) {
			d.handleSecret(EventRelationReady, newObj)
		},
		DeleteFunc: func(obj interface{}) {
			d.handleSecret(EventRelationBroken, obj)
		},
	}
	podHandler := toolscache.ResourceEventHandlerFuncs{
		AddFunc: func(obj interface{}) {
			d.handlePod(obj)
		},
		UpdateFunc: func(_, newObj interface{}) {
			d.handlePod(newObj)
		},
	}

	if err := d.register(&corev1.Secret{}, secretHandler); err != nil {
		return err
	}
	return d.register(&corev1.Pod{}, podHandler)
}

func (d *KubernetesDetector) register(obj client.Object, handler toolscache.ResourceEventHandler) error {
	informer, err := d.cache.GetInformer(d.ctx, obj)
	if err != nil {
		return fmt.Errorf("failed to get informer for %T: %w", obj, err)
	}

	registration, err := informer.AddEventHandler(handler)
	if err != nil {
		return fmt.Errorf("failed to add event handler for %T: %w", obj, err)
	}

	d.mu.Lock()
	d.informerRegistrations = append(d.informerRegistrations, registration)
	d.mu.Unlock()
	return nil
}

// handleSecret turns a relation Secret change into a relation event.
func (d *KubernetesDetector) handleSecret(kind EventKind, obj interface{}) {
	// Handle DeletedFinalStateUnknown for objects deleted while the watch was down
	if deletedState, ok := obj.(toolscache.DeletedFinalStateUnknown); ok {
		obj = deletedState.Obj
	}

	secret, ok := obj.(*corev1.Secret)
	if !ok {
		logging.Warn(kubeDetectorSubsystem, "Ignoring unexpected object %T", obj)
		return
	}

	relation := secret.Labels[d.labelKey]
	if !d.relations[relation] {
		return
	}

	d.send(NewEvent(kind, relation, SourceKubernetes))
}

// handlePod emits workload-ready when the workload container becomes ready.
func (d *KubernetesDetector) handlePod(obj interface{}) {
	pod, ok := obj.(*corev1.Pod)
	if !ok || pod.Name != d.podName {
		return
	}

	ready := containerReady(pod, d.containerName)

	d.mu.Lock()
	becameReady := ready && !d.containerReady
	d.containerReady = ready
	d.mu.Unlock()

	if becameReady {
		d.send(NewEvent(EventWorkloadReady, "", SourceKubernetes))
	}
}

func containerReady(pod *corev1.Pod, name string) bool {
	for _, status := range pod.Status.ContainerStatuses {
		if status.Name == name {
			return status.Ready
		}
	}
	return false
}

// send delivers an event to the output channel.
func (d *KubernetesDetector) send(event Event) {
	d.mu.RLock()
	events := d.events
	running := d.running
	d.mu.RUnlock()

	if !running || events == nil {
		return
	}

	select {
	case events <- event:
		logging.Debug(kubeDetectorSubsystem, "Emitted %s", event)
	default:
		logging.Warn(kubeDetectorSubsystem, "Event channel full, dropping %s", event.Name())
	}
}

// Stop gracefully stops the Kubernetes detector.
func (d *KubernetesDetector) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.running = false

	// Cancel the context to stop the cache and informers
	if d.cancelFunc != nil {
		d.cancelFunc()
	}

	// Registrations are removed when the cache stops
	d.informerRegistrations = nil

	logging.Info(kubeDetectorSubsystem, "Stopped Kubernetes detector")
	return nil
}

// GetSource returns the event source type.
func (d *KubernetesDetector) GetSource() EventSource {
	return SourceKubernetes
}

// GetRestConfig returns the REST config using controller-runtime's config
// detection (in-cluster, then KUBECONFIG).
func GetRestConfig() (*rest.Config, error) {
	return ctrl.GetConfig()
}
