package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// JsonConfig is the on-disk shape of the server config file. Empty fields
// leave the current value alone.
type JsonConfig struct {
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	Storage          string `json:"storage"`
	DatabaseDSN      string `json:"database_dsn"`
	SecretKey        string `json:"secret_key"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	LogFile          string `json:"log_file"`
}

func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	var c JsonConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	set(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&cfg.Storage, c.Storage)
	set(&cfg.DatabaseDSN, c.DatabaseDSN)
	set(&cfg.SecretKey, c.SecretKey)
	set(&cfg.LogLevel, c.LogLevel)
	set(&cfg.LogFormat, c.LogFormat)
	set(&cfg.LogFile, c.LogFile)
	return nil
}

func set(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
