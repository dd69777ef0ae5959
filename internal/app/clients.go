package app

import (
	"fmt"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Clients bundles the Kubernetes clients used by the operator.
type Clients struct {
	// RestConfig is used for pod exec streams and informers
	RestConfig *rest.Config

	// Kube is the typed clientset used for pod reads and exec requests
	Kube kubernetes.Interface

	// Client is the controller-runtime client used for relation objects and
	// status annotations
	Client client.Client
}

// NewClients creates clients from restConfig. A nil restConfig is detected
// with controller-runtime's standard lookup (in-cluster, then KUBECONFIG).
func NewClients(restConfig *rest.Config) (*Clients, error) {
	if restConfig == nil {
		detected, err := ctrl.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get Kubernetes config: %w", err)
		}
		restConfig = detected
	}

	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))

	kube, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes clientset: %w", err)
	}

	c, err := client.New(restConfig, client.Options{Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	return &Clients{
		RestConfig: restConfig,
		Kube:       kube,
		Client:     c,
	}, nil
}
