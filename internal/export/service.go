package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/callfabric/callstats/export-go/internal/model"
	"github.com/callfabric/callstats/export-go/internal/query"
	"github.com/callfabric/callstats/export-go/internal/storage"
)

// ErrNoRows signals that the probe found no conversations for the
// report date. The run aborts before producing any artifact.
var ErrNoRows = errors.New("no conversations for report date")

// StoreError wraps an object-storage upload failure so the driver can
// map it to its own exit code.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %v", e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Request contains input parameters for one export run.
type Request struct {
	Date time.Time
	TZ   string // IANA zone for the day boundary; empty means server/session zone
}

// Counter runs the preflight row count.
type Counter interface {
	CountRows(ctx context.Context, query string) (uint64, error)
}

// QueryRunner fetches the server-rendered CSV for a SQL statement.
type QueryRunner interface {
	QueryCSV(ctx context.Context, sql string) ([]byte, error)
}

// ObjectStorage writes data streams to object storage.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data io.Reader) error
}

// Service orchestrates the export: probe, query, local write, upload.
type Service struct {
	counter       Counter
	runner        QueryRunner
	objectStorage ObjectStorage // nil disables the upload (--no-upload)
	dir           string
	prefix        string
}

func NewService(counter Counter, runner QueryRunner, objectStorage ObjectStorage, dir, prefix string) *Service {
	return &Service{counter: counter, runner: runner, objectStorage: objectStorage, dir: dir, prefix: prefix}
}

func (s *Service) Export(ctx context.Context, req Request, runID model.RunID) error {
	if runID != "" {
		if err := runID.Validate(); err != nil {
			return err
		}
	}

	dateStr := req.Date.Format("2006-01-02")
	dateExpr := query.DateExpr(req.TZ)

	slog.DebugContext(ctx, "export started", "date", dateStr, "date_expr", dateExpr, "run_id", runID)

	// Probe first so a date/TZ mismatch doesn't ship an empty CSV
	count, err := s.counter.CountRows(ctx, query.CountRows(dateExpr, dateStr))
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	slog.InfoContext(ctx, "row count", "date", dateStr, "count", count, "run_id", runID)

	if count == 0 {
		s.writeEmptyFlag(ctx, dateStr)
		return fmt.Errorf("%w: %s using %s", ErrNoRows, dateStr, dateExpr)
	}

	csvBytes, err := s.runner.QueryCSV(ctx, query.AgentStats(dateExpr, dateStr))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	// Local copy for CI artifacts / debugging; losing it is not fatal
	filename := fmt.Sprintf("agent_stats_%s.csv", dateStr)
	s.writeLocal(ctx, filename, csvBytes)

	if s.objectStorage == nil {
		slog.InfoContext(ctx, "upload disabled, export complete", "file", filename, "run_id", runID)
		return nil
	}

	if nonBlankLines(csvBytes) <= 1 {
		slog.WarnContext(ctx, "CSV appears empty/header-only, skipping upload", "file", filename, "run_id", runID)
		return nil
	}

	key := storage.ObjectKey{Prefix: s.prefix, Date: dateStr}.Key()
	slog.DebugContext(ctx, "uploading artifact", "key", key, "bytes", len(csvBytes), "run_id", runID)

	if err := s.objectStorage.Put(ctx, key, bytes.NewReader(csvBytes)); err != nil {
		return &StoreError{Err: err}
	}

	slog.InfoContext(ctx, "export complete", "key", key, "run_id", runID)
	return nil
}

func (s *Service) writeLocal(ctx context.Context, filename string, data []byte) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		slog.WarnContext(ctx, "failed to create export directory", "dir", s.dir, "error", err)
		return
	}
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.WarnContext(ctx, "failed to write local CSV copy", "path", path, "error", err)
		return
	}
	slog.InfoContext(ctx, "wrote local CSV copy", "path", path, "bytes", len(data))
}

// writeEmptyFlag leaves a marker in the export directory so a zero-row
// day is obvious in CI artifacts.
func (s *Service) writeEmptyFlag(ctx context.Context, dateStr string) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		slog.WarnContext(ctx, "failed to create export directory", "dir", s.dir, "error", err)
		return
	}
	path := filepath.Join(s.dir, fmt.Sprintf("agent_stats_%s_EMPTY.flag", dateStr))
	if err := os.WriteFile(path, []byte("empty"), 0o644); err != nil {
		slog.WarnContext(ctx, "failed to write empty flag", "path", path, "error", err)
	}
}

func nonBlankLines(data []byte) int {
	n := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
