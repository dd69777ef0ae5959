// Package appconfig resolves the effective configuration of the Spring Boot
// service: the application-config JSON object, the server port, the datasource
// derived from the database relation and the validated JVM options.
package appconfig
