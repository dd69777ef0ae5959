package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spring-boot-operator/internal/appconfig"
	"spring-boot-operator/internal/config"
	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/internal/testing/mock"
)

func newTestIngress(relations *mock.Relations, options config.Options) *Ingress {
	return NewIngress(IngressConfig{
		Relation:  "nginx_ingress",
		AppName:   "spring-boot",
		ConfigMap: "spring-boot-ingress",
		Reader:    relations,
		Publisher: relations,
		Options:   mock.StaticOptions(options),
	})
}

func TestIngress_Data(t *testing.T) {
	tests := []struct {
		name    string
		options config.Options
		want    map[string]string
		wantErr error
	}{
		{
			name:    "defaults",
			options: config.Options{},
			want: map[string]string{
				KeyServiceHostname: "spring-boot",
				KeyServiceName:     "spring-boot",
				KeyServicePort:     "8080",
			},
		},
		{
			name: "hostname and port",
			options: config.Options{
				ApplicationConfig: `{"server": {"port": 9090}}`,
				IngressHostname:   "shop.example.com",
			},
			want: map[string]string{
				KeyServiceHostname: "shop.example.com",
				KeyServiceName:     "spring-boot",
				KeyServicePort:     "9090",
			},
		},
		{
			name:    "strip url prefix",
			options: config.Options{IngressStripURLPrefix: "/foo"},
			want: map[string]string{
				KeyServiceHostname: "spring-boot",
				KeyServiceName:     "spring-boot",
				KeyServicePort:     "8080",
				KeyRewriteEnabled:  "true",
				KeyRewriteTarget:   "/$2",
				KeyPathRoutes:      "/foo(/|$)(.*)",
			},
		},
		{
			name:    "invalid application config",
			options: config.Options{ApplicationConfig: `{"server": {"port": "http"}}`},
			wantErr: appconfig.ErrInvalidPortValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newTestIngress(mock.NewRelations(), tt.options).Data(tt.options)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIngress_PublishesOnReady(t *testing.T) {
	relations := mock.NewRelations().Join("nginx_ingress", map[string]string{})
	ingress := newTestIngress(relations, config.Options{IngressStripURLPrefix: "/foo"})

	outcome := ingress.Handle(context.Background(), event(reconciler.EventRelationReady, "nginx_ingress"))
	require.True(t, outcome.IsSuccess())

	published, ok := relations.PublishedAs("spring-boot-ingress")
	require.True(t, ok)
	assert.Equal(t, "nginx_ingress", published.Relation)
	assert.Equal(t, "true", published.Data[KeyRewriteEnabled])
	assert.Equal(t, "/$2", published.Data[KeyRewriteTarget])
	assert.Equal(t, "/foo(/|$)(.*)", published.Data[KeyPathRoutes])
}

func TestIngress_NoRelationNothingPublished(t *testing.T) {
	relations := mock.NewRelations()
	ingress := newTestIngress(relations, config.Options{})

	outcome := ingress.Handle(context.Background(), event(reconciler.EventConfigChanged, ""))

	assert.True(t, outcome.IsSuccess())
	_, ok := relations.PublishedAs("spring-boot-ingress")
	assert.False(t, ok)
}

func TestIngress_RetractsOnBroken(t *testing.T) {
	relations := mock.NewRelations().Join("nginx_ingress", map[string]string{})
	ingress := newTestIngress(relations, config.Options{})

	require.True(t, ingress.Handle(context.Background(), event(reconciler.EventRelationReady, "nginx_ingress")).IsSuccess())
	_, ok := relations.PublishedAs("spring-boot-ingress")
	require.True(t, ok)

	relations.Break("nginx_ingress")
	outcome := ingress.Handle(context.Background(), event(reconciler.EventRelationBroken, "nginx_ingress"))

	assert.True(t, outcome.IsSuccess())
	_, ok = relations.PublishedAs("spring-boot-ingress")
	assert.False(t, ok)
}

func TestIngress_InvalidConfigKeepsPreviousData(t *testing.T) {
	relations := mock.NewRelations().Join("nginx_ingress", map[string]string{})

	valid := newTestIngress(relations, config.Options{ApplicationConfig: `{"server": {"port": 8081}}`})
	require.True(t, valid.Handle(context.Background(), event(reconciler.EventConfigChanged, "")).IsSuccess())

	invalid := newTestIngress(relations, config.Options{ApplicationConfig: `not json`})
	outcome := invalid.Handle(context.Background(), event(reconciler.EventConfigChanged, ""))

	assert.True(t, outcome.IsSuccess())
	published, ok := relations.PublishedAs("spring-boot-ingress")
	require.True(t, ok)
	assert.Equal(t, "8081", published.Data[KeyServicePort])
}

func TestIngress_TransportFailuresDefer(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *mock.Relations)
		event reconciler.Event
	}{
		{
			name:  "read",
			setup: func(r *mock.Relations) { r.FailReads(errors.New("forbidden")) },
			event: event(reconciler.EventRelationReady, "nginx_ingress"),
		},
		{
			name:  "publish",
			setup: func(r *mock.Relations) { r.FailWrites(errors.New("conflict")) },
			event: event(reconciler.EventRelationReady, "nginx_ingress"),
		},
		{
			name:  "retract",
			setup: func(r *mock.Relations) { r.FailWrites(errors.New("conflict")) },
			event: event(reconciler.EventRelationBroken, "nginx_ingress"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relations := mock.NewRelations().Join("nginx_ingress", map[string]string{})
			tt.setup(relations)

			outcome := newTestIngress(relations, config.Options{}).Handle(context.Background(), tt.event)
			assert.Equal(t, reconciler.Waiting(MessageIngressUnavailable, true), outcome)
		})
	}
}
