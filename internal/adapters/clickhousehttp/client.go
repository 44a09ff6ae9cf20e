package clickhousehttp

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client runs SQL statements against the ClickHouse HTTP interface and
// returns the raw response bytes. The export pipeline depends on the
// server-rendered CSV arriving verbatim, so no decoding happens here.
type Client struct {
	baseURL    string
	user       string
	password   string
	database   string
	httpClient *http.Client
}

// NewClient creates a new ClickHouse HTTP client.
func NewClient(baseURL, user, password, database string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		user:     user,
		password: password,
		database: database,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// QueryCSV posts the SQL statement and returns the response body bytes.
// The caller is responsible for putting a FORMAT clause in the SQL.
func (c *Client) QueryCSV(ctx context.Context, sql string) ([]byte, error) {
	endpoint := c.baseURL
	if c.database != "" {
		endpoint += "?" + url.Values{"database": {c.database}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(sql))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	slog.DebugContext(ctx, "clickhouse query", "sql", strings.ReplaceAll(sql, "\n", " "))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		// ClickHouse puts the error text in the body; keep a trimmed copy
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return body, nil
}
