package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/fitkeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token HMAC secret key
//	-t int      access token validity, minutes
//	-i string   token issuer
//	-l int      maximum page size for list endpoints
//	-r int      login attempts per client IP per minute
//	-o string   OTLP/HTTP trace collector endpoint
//	-v string   log level
//
// Arguments are filtered with flagx.FilterArgs first, so the operator CLI can
// mix these with its own subcommand flags.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-s", "-t", "-i", "-l", "-r", "-o", "-v"})

	fs := flag.NewFlagSet("fitkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")

	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer")
	fs.IntVar(&config.ListMaxLimit, "l", config.ListMaxLimit, "maximum page size")
	fs.IntVar(&config.LoginRatePerMinute, "r", config.LoginRatePerMinute, "login attempts per minute per client")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP/HTTP endpoint")
	fs.StringVar(&config.LogLevel, "v", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["t"] {
		config.AccessTokenValidityDuration = time.Duration(*tokenMinutes) * time.Minute
	}

	if config.ListDefaultLimit > config.ListMaxLimit {
		config.ListDefaultLimit = config.ListMaxLimit
	}

	return nil
}
