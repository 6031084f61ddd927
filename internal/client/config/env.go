package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "HEALTHSYNC_"

// parseEnv loads envFile (or ./.env when it exists) into the process
// environment without overriding variables already set, then overlays cfg
// with the HEALTHSYNC_* variables.
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

	str(&cfg.ServerEndpointAddr, "SERVER_ADDR")
	str(&cfg.AccessToken, "ACCESS_TOKEN")
	str(&cfg.DBPath, "DB_PATH")
	str(&cfg.Backend, "BACKEND")
	str(&cfg.S3.Bucket, "S3_BUCKET")
	str(&cfg.S3.Prefix, "S3_PREFIX")
	str(&cfg.S3.Region, "S3_REGION")
	str(&cfg.S3.Endpoint, "S3_ENDPOINT")
	str(&cfg.S3.AccessKeyID, "S3_ACCESS_KEY_ID")
	str(&cfg.S3.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	str(&cfg.ConflictPolicy, "CONFLICT_POLICY")
	str(&cfg.LogLevel, "LOG_LEVEL")
	str(&cfg.LogFormat, "LOG_FORMAT")
	str(&cfg.LogFile, "LOG_FILE")

	if err := boolean(&cfg.S3.UsePathStyle, "S3_PATH_STYLE"); err != nil {
		return err
	}
	if err := integer(&cfg.LostAfter, "LOST_AFTER"); err != nil {
		return err
	}
	for name, dst := range map[string]*time.Duration{
		"SYNC_INTERVAL":  &cfg.SyncInterval,
		"PROBE_INTERVAL": &cfg.ProbeInterval,
		"PROBE_TIMEOUT":  &cfg.ProbeTimeout,
		"BACKOFF_BASE":   &cfg.BackoffBase,
		"BACKOFF_CAP":    &cfg.BackoffCap,
	} {
		if err := duration(dst, name); err != nil {
			return err
		}
	}
	return nil
}

func str(dst *string, name string) {
	if v, ok := os.LookupEnv(envPrefix + name); ok {
		*dst = v
	}
}

func boolean(dst *bool, name string) error {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = b
	return nil
}

func integer(dst *int, name string) error {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = n
	return nil
}

func duration(dst *time.Duration, name string) error {
	v, ok := os.LookupEnv(envPrefix + name)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
	}
	*dst = d
	return nil
}
