package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Probe runs the preflight row count through the ClickHouse driver.
// It speaks the HTTP protocol against the same endpoint as the CSV
// fetch, but scans a typed scalar instead of parsing CSV.
type Probe struct {
	db *sql.DB
}

// Config holds ClickHouse connection settings for the probe.
type Config struct {
	// URL is the HTTP interface base URL, e.g. "http://localhost:8123"
	URL      string
	User     string
	Password string
	Database string
}

// NewProbe creates a probe from the HTTP interface URL.
func NewProbe(cfg Config) (*Probe, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("clickhouse url %q has no host", cfg.URL)
	}

	opts := &clickhouse.Options{
		Protocol: clickhouse.HTTP,
		Addr:     []string{u.Host},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
	}
	if u.Scheme == "https" {
		opts.TLS = &tls.Config{}
	}

	return &Probe{db: clickhouse.OpenDB(opts)}, nil
}

// NewProbeWithDB wraps an existing database handle. Used in tests.
func NewProbeWithDB(db *sql.DB) *Probe {
	return &Probe{db: db}
}

// CountRows runs a query expected to return a single integer.
func (p *Probe) CountRows(ctx context.Context, query string) (uint64, error) {
	var n uint64
	if err := p.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query: %w", err)
	}
	return n, nil
}

func (p *Probe) Close() error {
	return p.db.Close()
}
