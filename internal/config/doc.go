// Package config loads the operator configuration.
//
// Configuration lives in a single directory containing config.yaml. The file
// is decoded over GetDefaultConfig, so every key is optional:
//
//	unit:
//	  appName: petclinic
//	  container: spring-boot-app
//	pebble:
//	  socket: /charm/containers/spring-boot-app/pebble.socket
//	database:
//	  relation: mysql_client
//	  name: petclinic
//	ingress:
//	  relation: nginx_ingress
//	options:
//	  application-config: '{"server":{"port":8888}}'
//	  jvm-config: -Xmx512m
//	  ingress-hostname: petclinic.example.com
//	  ingress-strip-url-prefix: /petclinic
//
// The options section is the charm configuration surface. It is re-read with
// LoadOptions on every reconciliation pass; the rest is read once at startup.
// POD_NAME and POD_NAMESPACE override unit.podName and unit.namespace.
package config
