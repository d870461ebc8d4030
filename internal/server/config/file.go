package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fitkeeper/internal/flagx"
	"github.com/dmitrijs2005/fitkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the configuration. Intervals use
// timex.Duration so both "30m" and integer nanoseconds are accepted.
//
// Only fields present in the file override the current values.
type FileConfig struct {
	EndpointAddrHTTP            string          `json:"endpoint_addr_http" yaml:"endpoint_addr_http"`
	EndpointAddrGRPC            string          `json:"endpoint_addr_grpc" yaml:"endpoint_addr_grpc"`
	DatabaseDSN                 string          `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string          `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	TokenIssuer                 string          `json:"token_issuer" yaml:"token_issuer"`
	ListDefaultLimit            int             `json:"list_default_limit" yaml:"list_default_limit"`
	ListMaxLimit                int             `json:"list_max_limit" yaml:"list_max_limit"`
	LoginRatePerMinute          int             `json:"login_rate_per_minute" yaml:"login_rate_per_minute"`
	OTLPEndpoint                string          `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	LogLevel                    string          `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file given with -c/-config onto config. Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON. No flag means
// nothing to load.
func parseFile(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fc := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, fc)
	default:
		err = json.Unmarshal(data, fc)
	}
	if err != nil {
		return err
	}

	fc.apply(config)
	return nil
}

func (fc *FileConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, fc.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, fc.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	if fc.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = fc.AccessTokenValidityDuration.Duration
	}
	setString(&config.TokenIssuer, fc.TokenIssuer)
	setInt(&config.ListDefaultLimit, fc.ListDefaultLimit)
	setInt(&config.ListMaxLimit, fc.ListMaxLimit)
	setInt(&config.LoginRatePerMinute, fc.LoginRatePerMinute)
	setString(&config.OTLPEndpoint, fc.OTLPEndpoint)
	setString(&config.LogLevel, fc.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
