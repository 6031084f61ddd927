package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/syncer"
	"github.com/dmitrijs2005/healthsync/internal/flagx"
)

// Remote backends.
const (
	BackendGRPC   = "grpc"
	BackendS3     = "s3"
	BackendMemory = "memory"
)

// S3Config configures the S3 document backend.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Config holds runtime settings for the healthsync client.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	DBPath             string
	Backend            string
	S3                 S3Config

	SyncInterval  time.Duration
	ProbeInterval time.Duration
	ProbeTimeout  time.Duration
	LostAfter     int
	BackoffBase   time.Duration
	BackoffCap    time.Duration

	ConflictPolicy string

	LogLevel  string
	LogFormat string
	LogFile   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DBPath = "healthsync.db"
	c.Backend = BackendGRPC
	c.S3 = S3Config{Bucket: "healthsync", Region: "us-east-1"}
	c.SyncInterval = 15 * time.Minute
	c.ProbeInterval = 30 * time.Second
	c.ProbeTimeout = 5 * time.Second
	c.LostAfter = 3
	c.BackoffBase = 30 * time.Second
	c.BackoffCap = time.Hour
	c.ConflictPolicy = syncer.PolicyOverwrite
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGRPC, BackendS3, BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if _, err := syncer.ResolverByName(c.ConflictPolicy); err != nil {
		return err
	}
	if c.Backend == BackendS3 && c.S3.Bucket == "" {
		return fmt.Errorf("s3 backend needs a bucket")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is empty")
	}
	return nil
}

// Load builds a Config from defaults, the environment and the JSON file
// named in args. Flags are applied later by BindFlags.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, flagx.EnvFile(args)); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, flagx.ConfigFile(args)); err != nil {
		return nil, err
	}
	return cfg, nil
}
