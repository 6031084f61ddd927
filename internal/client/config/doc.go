// Package config loads runtime configuration for the healthsync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A dotenv file (-env, or ./.env when present) and HEALTHSYNC_* environment variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags bound by BindFlags, which override earlier values.
//
// # JSON schema
//
// Durations accept Go duration strings or a number of seconds:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "db_path": "healthsync.db",
//	  "backend": "grpc",
//	  "sync_interval": "15m",
//	  "probe_interval": "30s",
//	  "conflict_policy": "overwrite",
//	  "s3": {"bucket": "healthsync", "region": "us-east-1"}
//	}
package config
