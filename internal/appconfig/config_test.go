package appconfig

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveApplicationConfig(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    map[string]any
		wantErr error
	}{
		{name: "empty", raw: "", want: nil},
		{name: "blank", raw: "  \n", want: nil},
		{name: "object", raw: `{"server":{"port":8888}}`, want: map[string]any{"server": map[string]any{"port": json.Number("8888")}}},
		{name: "not json", raw: `{server: 8888`, wantErr: ErrInvalidConfigSyntax},
		{name: "trailing data", raw: `{} {}`, wantErr: ErrInvalidConfigSyntax},
		{name: "array", raw: `[1, 2]`, wantErr: ErrInvalidConfigShape},
		{name: "string", raw: `"hello"`, wantErr: ErrInvalidConfigShape},
		{name: "null", raw: `null`, wantErr: ErrInvalidConfigShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveApplicationConfig(tt.raw, Datasource{})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveApplicationConfig_InjectsDatasource(t *testing.T) {
	ds := Datasource{URL: "jdbc:mysql://db:3306/spring-boot", Username: "u", Password: "p"}
	wantDatasource := map[string]any{"url": ds.URL, "username": "u", "password": "p"}

	t.Run("creates config", func(t *testing.T) {
		got, err := ResolveApplicationConfig("", ds)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"spring": map[string]any{"datasource": wantDatasource}}, got)
	})

	t.Run("overrides declared datasource", func(t *testing.T) {
		raw := `{"spring":{"application":{"name":"demo"},"datasource":{"url":"jdbc:h2:mem:test"}}}`
		got, err := ResolveApplicationConfig(raw, ds)
		require.NoError(t, err)

		spring := got["spring"].(map[string]any)
		assert.Equal(t, wantDatasource, spring["datasource"])
		assert.Equal(t, map[string]any{"name": "demo"}, spring["application"])
	})

	t.Run("replaces non-object spring key", func(t *testing.T) {
		got, err := ResolveApplicationConfig(`{"spring":"x"}`, ds)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"datasource": wantDatasource}, got["spring"])
	})
}

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "no config", raw: "", want: DefaultPort},
		{name: "no server", raw: `{"spring":{}}`, want: DefaultPort},
		{name: "server not an object", raw: `{"server":1}`, want: DefaultPort},
		{name: "no port", raw: `{"server":{"address":"0.0.0.0"}}`, want: DefaultPort},
		{name: "null port", raw: `{"server":{"port":null}}`, wantErr: true},
		{name: "port", raw: `{"server":{"port":8888}}`, want: 8888},
		{name: "zero", raw: `{"server":{"port":0}}`, wantErr: true},
		{name: "negative", raw: `{"server":{"port":-1}}`, wantErr: true},
		{name: "fraction", raw: `{"server":{"port":80.5}}`, wantErr: true},
		{name: "string", raw: `{"server":{"port":"8080"}}`, wantErr: true},
		{name: "bool", raw: `{"server":{"port":true}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ResolveApplicationConfig(tt.raw, Datasource{})
			require.NoError(t, err)

			got, err := ResolvePort(config)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPortValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePort_RoundTrip(t *testing.T) {
	for _, port := range []int{1, 80, 8080, 8888, 65535, 100000} {
		raw, err := json.Marshal(map[string]any{"server": map[string]any{"port": port}})
		require.NoError(t, err)

		config, err := ResolveApplicationConfig(string(raw), Datasource{})
		require.NoError(t, err)

		got, err := ResolvePort(config)
		require.NoError(t, err)
		assert.Equal(t, port, got)
	}
}

func TestResolvePort_DecodedWithoutNumbers(t *testing.T) {
	got, err := ResolvePort(map[string]any{"server": map[string]any{"port": float64(9000)}})
	require.NoError(t, err)
	assert.Equal(t, 9000, got)
}

func TestEnvironment(t *testing.T) {
	env, err := Environment(nil, "")
	require.NoError(t, err)
	assert.Empty(t, env)

	config, err := ResolveApplicationConfig(`{"server":{"port":8888},"app":{"greeting":"<hi>"}}`, Datasource{})
	require.NoError(t, err)

	env, err = Environment(config, "-Xmx512m")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		EnvApplicationJSON: `{"app":{"greeting":"<hi>"},"server":{"port":8888}}`,
		EnvJavaToolOptions: "-Xmx512m",
	}, env)
}
