package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/e14z/mcpcrawl/registry"
	"github.com/e14z/mcpcrawl/store"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/morikuni/failure/v2"
)

const searchBody = `{
  "total": 1,
  "objects": [
    {
      "package": {"name": "@acme/mcp-files", "description": "File access server", "keywords": ["mcp-server"]},
      "downloads": {"weekly": 120, "monthly": 500}
    }
  ]
}`

const filesPackument = `{
  "name": "@acme/mcp-files",
  "dist-tags": {"latest": "2.1.0"},
  "readme": "# mcp-files",
  "time": {"created": "2024-01-02T00:00:00.000Z", "modified": "2025-06-01T00:00:00.000Z"},
  "versions": {
    "2.1.0": {
      "description": "File access server",
      "keywords": ["mcp-server", "files"],
      "license": "MIT",
      "repository": {"type": "git", "url": "git+https://github.com/acme/mcp-files.git"}
    }
  }
}`

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-server")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("Failed to write script: %v", err)
	}
	return path
}

// newTestCrawler wires a crawler against a fake registry, a temp database,
// and a fake server script as the launch command for every package
func newTestCrawler(t *testing.T, script string) (*Crawler, *store.Store) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/-/v1/search", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(searchBody))
	})
	mux.HandleFunc("/@acme/mcp-files", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(filesPackument))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "mcpcrawl.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	c, err := New(st, Options{
		Limit:        5,
		Parallelism:  2,
		GracePeriod:  100 * time.Millisecond,
		ResponseWait: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	reg := registry.NewClient()
	reg.BaseURL = srv.URL
	reg.ForceUpdate = true
	if err := reg.SetCacheDir(t.TempDir()); err != nil {
		t.Fatalf("SetCacheDir() error = %v", err)
	}
	c.Registry = reg
	c.LaunchCommand = func(registry.Package) string { return script }

	return c, st
}

func TestRunStoresConnectedServer(t *testing.T) {
	script := writeScript(t, `read line
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"files","version":"2.1.0"},"capabilities":{}}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"read_file","description":"Read a file","inputSchema":{"type":"object","properties":{"path":{"type":"string"}}}}]}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":3,"result":{"resources":[]}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":4,"result":{"prompts":[]}}'
read line
`)
	c, st := newTestCrawler(t, script)

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantStats := store.RunStats{Discovered: 1, Connected: 1, Failed: 0, Stored: 1}
	if diff := cmp.Diff(wantStats, stats, cmpopts.IgnoreFields(store.RunStats{}, "Duration")); diff != "" {
		t.Errorf("Run() stats mismatch (-want +got):\n%s", diff)
	}

	rec, err := st.Get(context.Background(), "@acme/mcp-files")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !rec.Verified {
		t.Error("record not verified after successful probe")
	}
	if rec.Endpoint != "npx @acme/mcp-files" {
		t.Errorf("Endpoint = %q, want the npx launch command", rec.Endpoint)
	}
	if len(rec.Tools) != 1 || rec.Tools[0].Name != "read_file" {
		t.Errorf("Tools = %v, want the probed read_file tool", rec.Tools)
	}
	if rec.HealthStatus != "healthy" {
		t.Errorf("HealthStatus = %q, want %q", rec.HealthStatus, "healthy")
	}
	if rec.Protocol.Version != "2024-11-05" {
		t.Errorf("Protocol.Version = %q, want %q", rec.Protocol.Version, "2024-11-05")
	}
}

func TestRunRecordsFailedServer(t *testing.T) {
	script := writeScript(t, "echo Missing GITHUB_TOKEN >&2\nsleep 0.2\nexit 1\n")
	c, st := newTestCrawler(t, script)

	stats, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if stats.Failed != 1 || stats.Connected != 0 {
		t.Errorf("stats = %+v, want one failed connection", stats)
	}

	rec, err := st.Get(context.Background(), "@acme/mcp-files")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if rec.Verified {
		t.Error("record verified despite failed probe")
	}
	if rec.HealthStatus != "down" {
		t.Errorf("HealthStatus = %q, want %q", rec.HealthStatus, "down")
	}
	if !rec.AuthRequired {
		t.Error("AuthRequired = false, want the extracted credential requirement")
	}
	wantVars := []string{"GITHUB_TOKEN"}
	if diff := cmp.Diff(wantVars, rec.RequiredEnvVars); diff != "" {
		t.Errorf("RequiredEnvVars mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "Zero limit",
			opts: Options{Limit: 0, Parallelism: 4},
		},
		{
			name: "Excessive parallelism",
			opts: Options{Limit: 10, Parallelism: 1000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, tt.opts)
			if !failure.Is(err, ErrInvalidOptions) {
				t.Errorf("New() error = %v, want code %s", err, ErrInvalidOptions)
			}
		})
	}
}
