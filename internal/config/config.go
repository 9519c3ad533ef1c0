package config

import (
	"fmt"

	"github.com/dmitrijs2005/accessflow/internal/credentials"
	"github.com/dmitrijs2005/accessflow/internal/flagx"
)

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverS3       = "s3"
)

// StorageConfig selects the key-value backend.
//
// DSN is the database file for sqlite and the connection URL for postgres.
// Dir is used by the file driver.
type StorageConfig struct {
	Driver    string `json:"driver" yaml:"driver"`
	DSN       string `json:"dsn" yaml:"dsn"`
	Dir       string `json:"dir" yaml:"dir"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

// S3Config points at an S3 compatible bucket. A non-empty Endpoint is used
// for MinIO and other self-hosted services.
type S3Config struct {
	Bucket   string `json:"bucket" yaml:"bucket"`
	Region   string `json:"region" yaml:"region"`
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config holds runtime settings for the storefront CLI.
type Config struct {
	Storage          StorageConfig `json:"storage" yaml:"storage"`
	Redis            RedisConfig   `json:"redis" yaml:"redis"`
	S3               S3Config      `json:"s3" yaml:"s3"`
	CredentialScheme string        `json:"credential_scheme" yaml:"credential_scheme"`
	SeedDemoUser     bool          `json:"seed_demo_user" yaml:"seed_demo_user"`
	CatalogFile      string        `json:"catalog_file" yaml:"catalog_file"`
	Log              LogConfig     `json:"log" yaml:"log"`
	MetricsFile      string        `json:"metrics_file" yaml:"metrics_file"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Storage = StorageConfig{
		Driver: DriverSQLite,
		DSN:    "storefront.db",
		Dir:    ".storefront",
	}
	c.Redis = RedisConfig{Addr: "127.0.0.1:6379"}
	c.S3 = S3Config{Region: "us-east-1", Prefix: "storefront"}
	c.CredentialScheme = credentials.SchemePlain
	c.SeedDemoUser = true
	c.CatalogFile = ""
	c.Log = LogConfig{Level: "warn", Format: "text"}
	c.MetricsFile = ""
}

// LoadConfig applies defaults and then the config file named in args, if
// any. Flags are applied later by the command parser through BindFlags.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFileFlag(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by the flag parser.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverS3:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.Driver == DriverS3 && c.S3.Bucket == "" {
		return fmt.Errorf("storage driver s3 needs a bucket")
	}

	if _, err := credentials.New(c.CredentialScheme); err != nil {
		return err
	}
	return nil
}
