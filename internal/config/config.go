package config

import (
	"fmt"
	"os"
)

// Config holds application configuration.
type Config struct {
	// ClickHouse HTTP interface, e.g. "http://localhost:8123"
	ClickHouseURL      string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseDatabase string
	// IANA zone used for date extraction and "yesterday" math
	ClickHouseTZ string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool
	MinIOKeyPrefix string

	// Optional YYYY-MM-DD override of the report date
	ExportDate string
	// Directory for the local CSV artifact
	ExportDir string
}

type ErrMissingRequiredEnvVar struct {
	Name string
}

func (e *ErrMissingRequiredEnvVar) Error() string {
	return fmt.Sprintf("required environment variable %q is not set", e.Name)
}

// Load reads configuration from environment variables.
// Returns an error if required variables are missing. Storage variables
// are validated separately so --no-upload runs don't need them.
func Load() (*Config, error) {
	config := Config{}
	config.ClickHouseURL = os.Getenv("CLICKHOUSE_URL")
	if config.ClickHouseURL == "" {
		return nil, &ErrMissingRequiredEnvVar{Name: "CLICKHOUSE_URL"}
	}
	config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
	config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
	config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
	config.ClickHouseTZ = os.Getenv("CLICKHOUSE_TZ")

	config.MinIOEndpoint = os.Getenv("MINIO_ENDPOINT")
	config.MinIOAccessKey = os.Getenv("MINIO_ACCESS_KEY")
	config.MinIOSecretKey = os.Getenv("MINIO_SECRET_KEY")
	config.MinIOBucket = os.Getenv("MINIO_BUCKET")
	config.MinIOUseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	config.MinIOKeyPrefix = os.Getenv("MINIO_KEY_PREFIX")

	config.ExportDate = os.Getenv("EXPORT_DATE")
	config.ExportDir = os.Getenv("EXPORT_DIR")
	if config.ExportDir == "" {
		config.ExportDir = "exports"
	}

	return &config, nil
}

// ValidateStorage checks that all storage variables required for an
// upload are present. Skipped when running with --no-upload.
func (c *Config) ValidateStorage() error {
	if c.MinIOEndpoint == "" {
		return &ErrMissingRequiredEnvVar{Name: "MINIO_ENDPOINT"}
	}
	if c.MinIOAccessKey == "" {
		return &ErrMissingRequiredEnvVar{Name: "MINIO_ACCESS_KEY"}
	}
	if c.MinIOSecretKey == "" {
		return &ErrMissingRequiredEnvVar{Name: "MINIO_SECRET_KEY"}
	}
	if c.MinIOBucket == "" {
		return &ErrMissingRequiredEnvVar{Name: "MINIO_BUCKET"}
	}
	return nil
}
