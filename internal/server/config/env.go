package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Environment variables recognized by parseEnv. They match the env tags on
// Config.
const (
	EnvHTTPAddr           = "FITKEEPER_HTTP_ADDR"
	EnvGRPCAddr           = "FITKEEPER_GRPC_ADDR"
	EnvDatabaseDSN        = "FITKEEPER_DATABASE_DSN"
	EnvSecretKey          = "FITKEEPER_SECRET_KEY"
	EnvAccessTokenTTL     = "FITKEEPER_ACCESS_TOKEN_TTL"
	EnvTokenIssuer        = "FITKEEPER_TOKEN_ISSUER"
	EnvListDefaultLimit   = "FITKEEPER_LIST_DEFAULT_LIMIT"
	EnvListMaxLimit       = "FITKEEPER_LIST_MAX_LIMIT"
	EnvLoginRatePerMinute = "FITKEEPER_LOGIN_RATE_PER_MINUTE"
	EnvOTLPEndpoint       = "FITKEEPER_OTLP_ENDPOINT"
	EnvLogLevel           = "FITKEEPER_LOG_LEVEL"
)

var envKeys = []string{
	EnvHTTPAddr,
	EnvGRPCAddr,
	EnvDatabaseDSN,
	EnvSecretKey,
	EnvAccessTokenTTL,
	EnvTokenIssuer,
	EnvListDefaultLimit,
	EnvListMaxLimit,
	EnvLoginRatePerMinute,
	EnvOTLPEndpoint,
	EnvLogLevel,
}

// parseEnv overlays FITKEEPER_* variables onto config. Variables that are
// unset or empty leave the current value alone.
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}

	environment := make(map[string]string, len(envKeys))
	for _, key := range envKeys {
		if v, ok := lookup(key); ok && v != "" {
			environment[key] = v
		}
	}

	if err := env.ParseWithOptions(config, env.Options{Environment: environment}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return nil
}
