package clickhousehttp

import "fmt"

// APIError represents an error response from the ClickHouse HTTP interface.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clickhouse: %s (status %d)", e.Message, e.StatusCode)
}
