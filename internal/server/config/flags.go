package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/healthsync/internal/flagx"
)

// parseFlags overlays cfg with command-line flags:
//
//	-a string          gRPC bind address (e.g. ":50051")
//	-storage string    postgres or memory
//	-d string          PostgreSQL DSN
//	-s string          JWT HMAC secret key
//	-log-level string  debug, info, warn or error
//	-log-format string json or text
//	-log-file string   rotate logs into this file instead of stderr
//
// Arguments meant for other layers (-config, -env) are filtered out first.
func parseFlags(cfg *Config, args []string) error {
	names := []string{"a", "storage", "d", "s", "log-level", "log-format", "log-file"}
	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.EndpointAddrGRPC, "a", cfg.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "document storage (postgres|memory)")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (json|text)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file")

	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	return nil
}
