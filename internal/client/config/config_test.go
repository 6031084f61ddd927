package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()
	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, BackendGRPC, c.Backend)
	assert.Equal(t, 15*time.Minute, c.SyncInterval)
	assert.Equal(t, 3, c.LostAfter)
	assert.Equal(t, "overwrite", c.ConflictPolicy)
	require.NoError(t, c.Validate())
}

func TestLoad_NoSources(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	envFile := filepath.Join(dir, "custom.env")
	require.NoError(t, os.WriteFile(envFile,
		[]byte("HEALTHSYNC_DB_PATH=from-env.db\nHEALTHSYNC_BACKEND=memory\nHEALTHSYNC_LOG_LEVEL=debug\n"), 0o600))
	// registered so the cleanup unsets what the env file loads
	for _, k := range []string{"HEALTHSYNC_DB_PATH", "HEALTHSYNC_LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Setenv("HEALTHSYNC_PROBE_INTERVAL", "10s")
	t.Setenv("HEALTHSYNC_S3_PATH_STYLE", "true")
	// godotenv never overrides variables that are already set
	t.Setenv("HEALTHSYNC_BACKEND", "s3")

	jsonFile := writeTempJSON(t, map[string]any{
		"db_path":         "from-json.db",
		"sync_interval":   "5m",
		"conflict_policy": "newest",
		"s3":              map[string]any{"bucket": "meals", "use_path_style": false},
	})

	cfg, err := Load([]string{"run", "--env", envFile, "-c", jsonFile})
	require.NoError(t, err)

	assert.Equal(t, "from-json.db", cfg.DBPath, "json overrides env")
	assert.Equal(t, BackendS3, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, "newest", cfg.ConflictPolicy)
	assert.Equal(t, "meals", cfg.S3.Bucket)
	assert.Equal(t, "us-east-1", cfg.S3.Region, "unset json keys keep earlier values")
	assert.False(t, cfg.S3.UsePathStyle)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load([]string{"-config", filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))
	_, err = Load([]string{"-config", bad})
	require.Error(t, err)

	t.Setenv("HEALTHSYNC_LOST_AFTER", "many")
	_, err = Load(nil)
	require.Error(t, err)
}

func TestBindFlags(t *testing.T) {
	cfg := defaults()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)

	require.NoError(t, fs.Parse([]string{"-a", "10.0.0.1:9090", "--db", "x.db", "-i", "45s", "-c", "ignored.json"}))

	assert.Equal(t, "10.0.0.1:9090", cfg.ServerEndpointAddr)
	assert.Equal(t, "x.db", cfg.DBPath)
	assert.Equal(t, 45*time.Second, cfg.ProbeInterval)
	assert.Equal(t, 15*time.Minute, cfg.SyncInterval, "untouched flags keep loaded values")

	require.Error(t, fs.Parse([]string{"-i", "abc"}))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "ftp" }},
		{"unknown policy", func(c *Config) { c.ConflictPolicy = "merge" }},
		{"s3 without bucket", func(c *Config) { c.Backend = BackendS3; c.S3.Bucket = "" }},
		{"empty db path", func(c *Config) { c.DBPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}
