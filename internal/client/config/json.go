package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/healthsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer and
// zero-checked fields let a partial file override only what it names.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	AccessToken        string         `json:"access_token"`
	DBPath             string         `json:"db_path"`
	Backend            string         `json:"backend"`
	S3                 *jsonS3        `json:"s3"`
	SyncInterval       timex.Duration `json:"sync_interval"`
	ProbeInterval      timex.Duration `json:"probe_interval"`
	ProbeTimeout       timex.Duration `json:"probe_timeout"`
	LostAfter          int            `json:"lost_after"`
	BackoffBase        timex.Duration `json:"backoff_base"`
	BackoffCap         timex.Duration `json:"backoff_cap"`
	ConflictPolicy     string         `json:"conflict_policy"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
	LogFile            string         `json:"log_file"`
}

type jsonS3 struct {
	Bucket          string `json:"bucket"`
	Prefix          string `json:"prefix"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	UsePathStyle    *bool  `json:"use_path_style"`
}

// parseJSON overlays cfg with the non-empty values of the JSON file at path.
// An empty path leaves cfg untouched.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	set(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	set(&cfg.AccessToken, jc.AccessToken)
	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.Backend, jc.Backend)
	set(&cfg.ConflictPolicy, jc.ConflictPolicy)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogFile, jc.LogFile)
	set(&cfg.SyncInterval, jc.SyncInterval.Duration)
	set(&cfg.ProbeInterval, jc.ProbeInterval.Duration)
	set(&cfg.ProbeTimeout, jc.ProbeTimeout.Duration)
	set(&cfg.BackoffBase, jc.BackoffBase.Duration)
	set(&cfg.BackoffCap, jc.BackoffCap.Duration)
	set(&cfg.LostAfter, jc.LostAfter)

	if s := jc.S3; s != nil {
		set(&cfg.S3.Bucket, s.Bucket)
		set(&cfg.S3.Prefix, s.Prefix)
		set(&cfg.S3.Region, s.Region)
		set(&cfg.S3.Endpoint, s.Endpoint)
		set(&cfg.S3.AccessKeyID, s.AccessKeyID)
		set(&cfg.S3.SecretAccessKey, s.SecretAccessKey)
		if s.UsePathStyle != nil {
			cfg.S3.UsePathStyle = *s.UsePathStyle
		}
	}
	return nil
}

func set[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
