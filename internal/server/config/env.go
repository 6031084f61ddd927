package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

const envPrefix = "HEALTHSYNC_SERVER_"

// parseEnv loads envFile (or ./.env when it exists) without overriding the
// process environment, then overlays cfg with HEALTHSYNC_SERVER_* variables.
func parseEnv(cfg *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for name, dst := range map[string]*string{
		"GRPC_ADDR":    &cfg.EndpointAddrGRPC,
		"STORAGE":      &cfg.Storage,
		"DATABASE_DSN": &cfg.DatabaseDSN,
		"SECRET_KEY":   &cfg.SecretKey,
		"LOG_LEVEL":    &cfg.LogLevel,
		"LOG_FORMAT":   &cfg.LogFormat,
		"LOG_FILE":     &cfg.LogFile,
	} {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}
	return nil
}
