package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, DriverSQLite, c.Storage.Driver)
	assert.Equal(t, "storefront.db", c.Storage.DSN)
	assert.Equal(t, "plain", c.CredentialScheme)
	assert.True(t, c.SeedDemoUser)
	assert.Equal(t, "warn", c.Log.Level)
	require.NoError(t, c.Validate())
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig([]string{"whoami"})
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", `
storage:
  driver: postgres
  dsn: postgres://localhost/shop
credential_scheme: argon2
seed_demo_user: false
log:
  format: json
`)

	cfg, err := LoadConfig([]string{"-c", path, "cart", "show"})
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://localhost/shop", cfg.Storage.DSN)
	assert.Equal(t, "argon2", cfg.CredentialScheme)
	assert.False(t, cfg.SeedDemoUser)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "warn", cfg.Log.Level, "missing keys keep defaults")
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeTemp(t, "cfg.json", `{"storage":{"driver":"redis","namespace":"demo"},"redis":{"addr":"cache:6379","db":2}}`)

	cfg, err := LoadConfig([]string{"--config=" + path})
	require.NoError(t, err)

	assert.Equal(t, DriverRedis, cfg.Storage.Driver)
	assert.Equal(t, "demo", cfg.Storage.Namespace)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "storefront.db", cfg.Storage.DSN)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	assert.ErrorContains(t, err, "failed to read config file")

	bad := writeTemp(t, "bad.json", "{")
	_, err = LoadConfig([]string{"-c", bad})
	assert.ErrorContains(t, err, "failed to parse config file")

	badYAML := writeTemp(t, "bad.yml", "storage: [")
	_, err = LoadConfig([]string{"-c", badYAML})
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestBindFlags_Precedence(t *testing.T) {
	path := writeTemp(t, "cfg.yaml", "storage:\n  driver: file\n  dir: /tmp/from-file\nlog:\n  level: info\n")
	args := []string{"-c", path, "--driver", "memory", "--redis-db", "3", "--seed-demo=false"}

	cfg, err := LoadConfig(args)
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs, cfg)
	require.NoError(t, fs.Parse(args))

	assert.Equal(t, DriverMemory, cfg.Storage.Driver, "flag beats file")
	assert.Equal(t, "/tmp/from-file", cfg.Storage.Dir, "file beats default")
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.SeedDemoUser)
}

func TestValidate(t *testing.T) {
	var c Config
	c.LoadDefaults()

	c.Storage.Driver = "floppy"
	assert.ErrorContains(t, c.Validate(), "unknown storage driver")

	c.Storage.Driver = DriverS3
	assert.ErrorContains(t, c.Validate(), "needs a bucket")
	c.S3.Bucket = "shop"
	assert.NoError(t, c.Validate())

	c.CredentialScheme = "md5"
	assert.ErrorContains(t, c.Validate(), "unknown credential scheme")
}
