package config

import "github.com/spf13/pflag"

// BindFlags registers the configuration flags on fs. Current values of cfg
// become the flag defaults, so flags override the file and the file
// overrides built-in defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// parsed ahead of time by LoadConfig; registered so the parser accepts it
	fs.StringP("config", "c", "", "path to a JSON or YAML config file")

	fs.StringVar(&cfg.Storage.Driver, "driver", cfg.Storage.Driver, "storage driver: memory, file, sqlite, postgres, redis, s3")
	fs.StringVar(&cfg.Storage.DSN, "dsn", cfg.Storage.DSN, "sqlite file or postgres URL")
	fs.StringVar(&cfg.Storage.Dir, "dir", cfg.Storage.Dir, "directory for the file driver")
	fs.StringVar(&cfg.Storage.Namespace, "namespace", cfg.Storage.Namespace, "prefix for all stored keys")

	fs.StringVar(&cfg.Redis.Addr, "redis-addr", cfg.Redis.Addr, "redis host:port")
	fs.StringVar(&cfg.Redis.Password, "redis-password", cfg.Redis.Password, "redis password")
	fs.IntVar(&cfg.Redis.DB, "redis-db", cfg.Redis.DB, "redis database number")

	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "s3 bucket")
	fs.StringVar(&cfg.S3.Region, "s3-region", cfg.S3.Region, "s3 region")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "s3 endpoint URL for MinIO and similar")
	fs.StringVar(&cfg.S3.User, "s3-user", cfg.S3.User, "s3 access key")
	fs.StringVar(&cfg.S3.Password, "s3-password", cfg.S3.Password, "s3 secret key")
	fs.StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "object key prefix")

	fs.StringVar(&cfg.CredentialScheme, "credential-scheme", cfg.CredentialScheme, "password scheme: plain, argon2, bcrypt")
	fs.BoolVar(&cfg.SeedDemoUser, "seed-demo", cfg.SeedDemoUser, "create the demo account when missing")
	fs.StringVar(&cfg.CatalogFile, "catalog", cfg.CatalogFile, "product catalog file (YAML or JSON); embedded demo catalog when empty")

	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.Format, "log-format", cfg.Log.Format, "log format: text or json")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write prometheus metrics to this textfile on exit")
}
