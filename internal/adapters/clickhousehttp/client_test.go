package clickhousehttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_QueryCSV(t *testing.T) {
	const sql = "SELECT 1 FORMAT CSVWithNames"
	const csv = "agent_id,avg_call_length_sec,p90_call_length_sec\n\"a-1\",120.5,240\n"

	var gotBody string
	var gotAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("database") != "callstats" {
			t.Errorf("expected database query param, got %q", r.URL.Query().Get("database"))
		}
		user, pass, ok := r.BasicAuth()
		gotAuth = ok && user == "reporter" && pass == "secret"

		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(csv))
	}))
	defer server.Close()

	client := NewClient(server.URL, "reporter", "secret", "callstats")

	data, err := client.QueryCSV(context.Background(), sql)
	if err != nil {
		t.Fatalf("QueryCSV() error = %v", err)
	}

	if string(data) != csv {
		t.Fatalf("expected body %q, got %q", csv, string(data))
	}
	if gotBody != sql {
		t.Fatalf("expected posted SQL %q, got %q", sql, gotBody)
	}
	if !gotAuth {
		t.Fatal("expected basic auth credentials on the request")
	}
}

func TestClient_QueryCSV_NoAuthNoDatabase(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, _, ok := r.BasicAuth(); ok {
			t.Error("expected no basic auth header")
		}
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query params, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte("ok\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", "")

	data, err := client.QueryCSV(context.Background(), "SELECT 1")
	if err != nil {
		t.Fatalf("QueryCSV() error = %v", err)
	}
	if string(data) != "ok\n" {
		t.Fatalf("unexpected body %q", string(data))
	}
}

func TestClient_QueryCSV_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Code: 60. DB::Exception: Table default.conversations does not exist.\n"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", "")

	_, err := client.QueryCSV(context.Background(), "SELECT 1")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", apiErr.StatusCode)
	}
	if apiErr.Message == "" {
		t.Fatal("expected the server error text to be captured")
	}
}

func TestClient_QueryCSV_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(server.URL, "", "", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.QueryCSV(ctx, "SELECT 1"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
