package appconfig

import (
	"strings"

	"spring-boot-operator/pkg/logging"
)

// Relation data keys published by a MySQL provider.
const (
	KeyEndpoints = "endpoints"
	KeyUsername  = "username"
	KeyPassword  = "password"
	KeyDatabase  = "database"
)

// Datasource is the JDBC connection derived from the database relation.
// All fields are empty when no database integration is active.
type Datasource struct {
	URL      string
	Username string
	Password string
}

// IsZero reports whether no datasource is configured.
func (d Datasource) IsZero() bool {
	return d == Datasource{}
}

// ResolveDatasource derives the datasource from database relation data.
//
// Only the first relation and its first endpoint are used. Missing endpoints,
// username or password mean the provider is not ready yet and produce an empty
// Datasource. The database name defaults to requestedDatabase.
func ResolveDatasource(relations []map[string]string, requestedDatabase string) Datasource {
	if len(relations) == 0 {
		return Datasource{}
	}
	if len(relations) > 1 {
		logging.Warn("ConfigResolver", "%d database relations found, using the first one", len(relations))
	}
	data := relations[0]

	endpoints := strings.TrimSpace(data[KeyEndpoints])
	username := data[KeyUsername]
	password := data[KeyPassword]
	if endpoints == "" || username == "" || password == "" {
		logging.Debug("ConfigResolver", "Database relation data incomplete, datasource not ready")
		return Datasource{}
	}

	endpoint := strings.TrimSpace(strings.Split(endpoints, ",")[0])
	database := data[KeyDatabase]
	if database == "" {
		database = requestedDatabase
	}

	return Datasource{
		URL:      "jdbc:mysql://" + endpoint + "/" + database,
		Username: username,
		Password: password,
	}
}
