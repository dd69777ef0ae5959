package app

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"

	"spring-boot-operator/internal/reconciler"
	"spring-boot-operator/pkg/logging"
)

// versionKey is the ConfigMap key holding the last operator version that
// started for the application.
const versionKey = "operator-version"

// StateConfigMapName returns the name of the ConfigMap recording operator
// state for appName.
func StateConfigMapName(appName string) string {
	return appName + "-operator-state"
}

// StartupEvent records version as the running operator version and returns
// the event kind to trigger at startup: upgrade when a different version was
// recorded before, start otherwise.
func StartupEvent(ctx context.Context, c client.Client, namespace, appName, version string) (reconciler.EventKind, error) {
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      StateConfigMapName(appName),
			Namespace: namespace,
		},
	}

	kind := reconciler.EventStart
	_, err := controllerutil.CreateOrUpdate(ctx, c, cm, func() error {
		if previous, ok := cm.Data[versionKey]; ok && previous != version {
			logging.Info("Lifecycle", "Operator version changed from %s to %s", previous, version)
			kind = reconciler.EventUpgrade
		}
		if cm.Data == nil {
			cm.Data = map[string]string{}
		}
		cm.Data[versionKey] = version
		return nil
	})
	if err != nil {
		return reconciler.EventStart, fmt.Errorf("failed to record operator version: %w", err)
	}
	return kind, nil
}
