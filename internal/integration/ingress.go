package integration

import (
	"context"
	"strconv"

	"spring-boot-operator/internal/appconfig"
	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/internal/relation"
	"spring-boot-operator/pkg/logging"
)

const ingressSubsystem = "IngressAdapter"

// Keys of the ingress relation data.
const (
	KeyServiceHostname = "service-hostname"
	KeyServiceName     = "service-name"
	KeyServicePort     = "service-port"
	KeyRewriteEnabled  = "rewrite-enabled"
	KeyRewriteTarget   = "rewrite-target"
	KeyPathRoutes      = "path-routes"
)

// MessageIngressUnavailable is the outcome reason when ingress data cannot be
// published or retracted.
const MessageIngressUnavailable = "Waiting for ingress relation"

// IngressConfig holds the collaborators of an Ingress adapter.
type IngressConfig struct {
	// Relation is the ingress relation name.
	Relation string

	// AppName is the application name used as service name and default hostname.
	AppName string

	// ConfigMap is the object the ingress data is published as.
	ConfigMap string

	Reader    relation.Reader
	Publisher relation.Publisher
	Options   reconciler.OptionsFunc
}

// Ingress publishes the routing data the ingress provider needs. The data
// never flows back into the application configuration.
type Ingress struct {
	config IngressConfig
}

// NewIngress creates the ingress adapter.
func NewIngress(config IngressConfig) *Ingress {
	return &Ingress{config: config}
}

// Data computes the ingress data for options.
func (i *Ingress) Data(options config.Options) (map[string]string, error) {
	applicationConfig, err := appconfig.ResolveApplicationConfig(options.ApplicationConfig, appconfig.Datasource{})
	if err != nil {
		return nil, err
	}
	port, err := appconfig.ResolvePort(applicationConfig)
	if err != nil {
		return nil, err
	}

	hostname := options.IngressHostname
	if hostname == "" {
		hostname = i.config.AppName
	}

	data := map[string]string{
		KeyServiceHostname: hostname,
		KeyServiceName:     i.config.AppName,
		KeyServicePort:     strconv.Itoa(port),
	}
	if prefix := options.IngressStripURLPrefix; prefix != "" {
		data[KeyRewriteEnabled] = "true"
		data[KeyRewriteTarget] = "/$2"
		data[KeyPathRoutes] = prefix + "(/|$)(.*)"
	}
	return data, nil
}

// Handle implements reconciler.Handler.
func (i *Ingress) Handle(ctx context.Context, event reconciler.Event) reconciler.Outcome {
	if event.Kind == reconciler.EventRelationBroken && event.Relation == i.config.Relation {
		if err := i.config.Publisher.Retract(ctx, i.config.ConfigMap); err != nil {
			logging.Warn(ingressSubsystem, "Failed to retract ingress data: %v", err)
			return reconciler.Waiting(MessageIngressUnavailable, true)
		}
		logging.Info(ingressSubsystem, "Ingress relation removed, retracted %s", i.config.ConfigMap)
		return reconciler.Success()
	}

	remotes, err := i.config.Reader.Relations(ctx, i.config.Relation)
	if err != nil {
		logging.Warn(ingressSubsystem, "Failed to read ingress relation: %v", err)
		return reconciler.Waiting(MessageIngressUnavailable, true)
	}
	if len(remotes) == 0 {
		logging.Debug(ingressSubsystem, "No ingress relation, nothing to publish")
		return reconciler.Success()
	}

	options, err := i.config.Options(ctx)
	if err != nil {
		logging.Warn(ingressSubsystem, "Not publishing ingress data, options unreadable: %v", err)
		return reconciler.Success()
	}

	// Invalid configuration blocks the unit through the engine; the ingress
	// keeps its previous data until the configuration is fixed.
	data, err := i.Data(options)
	if err != nil {
		logging.Warn(ingressSubsystem, "Not publishing ingress data: %v", err)
		return reconciler.Success()
	}

	if err := i.config.Publisher.Publish(ctx, i.config.Relation, i.config.ConfigMap, data); err != nil {
		logging.Warn(ingressSubsystem, "Failed to publish ingress data: %v", err)
		return reconciler.Waiting(MessageIngressUnavailable, true)
	}

	logging.Info(ingressSubsystem, "Published ingress data for %s on port %s", data[KeyServiceHostname], data[KeyServicePort])
	return reconciler.Success()
}

// Route returns the routing table entry of the adapter.
func (i *Ingress) Route() Route {
	return Route{
		Name: "ingress",
		Matches: func(event reconciler.Event) bool {
			return event.IsRelation(i.config.Relation) || event.Kind == reconciler.EventConfigChanged
		},
		Handler: i,
	}
}
