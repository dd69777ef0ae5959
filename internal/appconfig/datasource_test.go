package appconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveDatasource(t *testing.T) {
	tests := []struct {
		name      string
		relations []map[string]string
		want      Datasource
	}{
		{
			name: "no relation",
			want: Datasource{},
		},
		{
			name: "first endpoint and requested database",
			relations: []map[string]string{
				{"endpoints": "host:3306,host2:3306", "username": "u", "password": "p"},
			},
			want: Datasource{URL: "jdbc:mysql://host:3306/spring-boot", Username: "u", Password: "p"},
		},
		{
			name: "provider database name",
			relations: []map[string]string{
				{"endpoints": "host:3306", "username": "u", "password": "p", "database": "orders"},
			},
			want: Datasource{URL: "jdbc:mysql://host:3306/orders", Username: "u", Password: "p"},
		},
		{
			name: "only first relation is used",
			relations: []map[string]string{
				{"endpoints": "a:3306", "username": "ua", "password": "pa"},
				{"endpoints": "b:3306", "username": "ub", "password": "pb"},
			},
			want: Datasource{URL: "jdbc:mysql://a:3306/spring-boot", Username: "ua", Password: "pa"},
		},
		{
			name: "missing password",
			relations: []map[string]string{
				{"endpoints": "host:3306", "username": "u"},
			},
			want: Datasource{},
		},
		{
			name: "missing endpoints",
			relations: []map[string]string{
				{"username": "u", "password": "p"},
			},
			want: Datasource{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDatasource(tt.relations, "spring-boot")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == Datasource{}, got.IsZero())
		})
	}
}
