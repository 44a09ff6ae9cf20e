package exitcode

// Exit codes for the export CLI.
// The scheduler can use these to decide retry strategy.
const (
	// Success - job completed successfully
	Success = 0

	// ConfigError - missing or invalid configuration
	// Don't retry: fix the config first
	ConfigError = 1

	// QueryError - ClickHouse unreachable or the query failed
	// Retry with backoff
	QueryError = 2

	// StorageError - failed to write to MinIO/S3
	// Retry with backoff
	StorageError = 3

	// DataError - no rows for the report date
	// Don't retry: investigate the data (likely a date/TZ mismatch)
	DataError = 4
)
