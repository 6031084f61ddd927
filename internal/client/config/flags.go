package config

import "github.com/spf13/pflag"

// BindFlags registers the client flags on fs with the current values of cfg
// as defaults, so parsing fs writes straight into cfg. The config and env
// file flags are registered too; Load has already consumed them.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringP("config", "c", "", "path to a JSON config file")
	fs.String("env", "", "path to a dotenv file")

	fs.StringVarP(&cfg.ServerEndpointAddr, "addr", "a", cfg.ServerEndpointAddr, "address and port of the sync server")
	fs.StringVar(&cfg.AccessToken, "token", cfg.AccessToken, "access token sent to the sync server")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the local database")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "remote backend: grpc, s3 or memory")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket for the s3 backend")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3-compatible endpoint URL")
	fs.DurationVar(&cfg.SyncInterval, "sync-interval", cfg.SyncInterval, "periodic sync interval")
	fs.DurationVarP(&cfg.ProbeInterval, "probe-interval", "i", cfg.ProbeInterval, "connectivity probe interval")
	fs.StringVar(&cfg.ConflictPolicy, "conflict-policy", cfg.ConflictPolicy, "conflict policy: overwrite or newest")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "rotate logs into this file instead of stderr")
}
