package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestParseFile_JSON(t *testing.T) {
	path := writeFile(t, "cfg.json", `{
		"endpoint_addr_grpc": ":6000",
		"token_issuer": "gym",
		"access_token_validity_duration": 60000000000,
		"login_rate_per_minute": 3
	}`)

	c := defaults()
	require.NoError(t, parseFile(&c, []string{"-config", path}))

	assert.Equal(t, ":6000", c.EndpointAddrGRPC)
	assert.Equal(t, "gym", c.TokenIssuer)
	assert.Equal(t, time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, 3, c.LoginRatePerMinute)
	// untouched
	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
}

func TestParseFile_YAML(t *testing.T) {
	path := writeFile(t, "cfg.yml", "otlp_endpoint: collector:4318\nlist_default_limit: 20\n")

	c := defaults()
	require.NoError(t, parseFile(&c, []string{"-c", path}))

	assert.Equal(t, "collector:4318", c.OTLPEndpoint)
	assert.Equal(t, 20, c.ListDefaultLimit)
}

func TestParseFile_NoFlag(t *testing.T) {
	c := defaults()
	require.NoError(t, parseFile(&c, []string{"-a", ":1"}))
	assert.Equal(t, defaults(), c)
}

func TestParseFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }},
		{"bad json", func(t *testing.T) string { return writeFile(t, "bad.json", "{") }},
		{"bad duration", func(t *testing.T) string {
			return writeFile(t, "bad.yaml", "access_token_validity_duration: soon\n")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			assert.Error(t, parseFile(&c, []string{"-c", tt.path(t)}))
		})
	}
}
