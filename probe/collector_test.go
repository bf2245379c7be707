package probe

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// testCollector uses a short grace period so tests stay fast
func testCollector() *Collector {
	return &Collector{
		Supervisor:   &Supervisor{GracePeriod: 100 * time.Millisecond},
		Client:       testClient,
		ResponseWait: 2 * time.Second,
	}
}

func TestCollectFullSession(t *testing.T) {
	script := writeScript(t, `read line
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"demo","version":"1.0.0"},"capabilities":{"tools":{"listChanged":true}}}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"search","description":"Search things","inputSchema":{"type":"object","properties":{"query":{"type":"string"},"limit":{"type":"number"}}}}]}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":3,"result":{"resources":[]}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":4,"result":{"prompts":[{"name":"summarize","description":"Summarize text"}]}}'
read line
`)

	got := testCollector().Collect(context.Background(), script)

	want := Outcome{
		Success:         true,
		ProtocolVersion: "2024-11-05",
		ServerInfo:      map[string]any{"name": "demo", "version": "1.0.0"},
		Capabilities:    map[string]any{"tools": map[string]any{"listChanged": true}},
		Tools: []ToolDescriptor{
			{Name: "search", Description: "Search things", Parameters: []string{"limit", "query"}},
		},
		Resources: []ResourceDescriptor{},
		Prompts: []PromptDescriptor{
			{Name: "summarize", Description: "Summarize text"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() mismatch (-want +got):\n%s", diff)
	}
	if got.FunctionalityCount() != 2 {
		t.Errorf("FunctionalityCount() = %d, want 2", got.FunctionalityCount())
	}
}

func TestCollectEarlyExit(t *testing.T) {
	script := writeScript(t, "echo Missing STRIPE_SECRET_KEY >&2\nsleep 0.2\nexit 1\n")

	got := testCollector().Collect(context.Background(), script)

	if got.Success {
		t.Error("Collect() Success = true for a process that died during startup")
	}
	if got.ErrorText == "" {
		t.Error("Collect() recorded no error text")
	}
	if !strings.Contains(got.Diagnostics, "STRIPE_SECRET_KEY") {
		t.Errorf("Collect() Diagnostics = %q, want the captured startup complaint", got.Diagnostics)
	}

	// The whole point of keeping diagnostics: the credential complaint is
	// recoverable from the failed outcome.
	signal := ExtractAuthSignal(got)
	wantSignal := AuthSignal{Required: true, Variables: []string{"STRIPE_SECRET_KEY"}}
	if diff := cmp.Diff(wantSignal, signal); diff != "" {
		t.Errorf("ExtractAuthSignal() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectSilentServer(t *testing.T) {
	script := writeScript(t, "exec sleep 10\n")

	c := testCollector()
	c.ResponseWait = 200 * time.Millisecond
	got := c.Collect(context.Background(), script)

	if got.Success {
		t.Error("Collect() Success = true for a server that never answered")
	}
	if got.ErrorText != "No response from server" {
		t.Errorf("Collect() ErrorText = %q, want %q", got.ErrorText, "No response from server")
	}
}

func TestCollectPartialListing(t *testing.T) {
	script := writeScript(t, `read line
printf '%s\n' '{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2024-11-05","serverInfo":{"name":"demo","version":"1.0.0"},"capabilities":{}}}'
read line
printf '%s\n' '{"jsonrpc":"2.0","id":2,"error":{"code":-32601,"message":"Method not found"}}'
read line
`)

	got := testCollector().Collect(context.Background(), script)

	if !got.Success {
		t.Error("Collect() Success = false, want true: negotiation succeeded")
	}
	if len(got.Tools) != 0 {
		t.Errorf("Collect() Tools = %v, want none", got.Tools)
	}
	if !strings.Contains(got.Diagnostics, methodListTools) {
		t.Errorf("Collect() Diagnostics = %q, want the failed listing recorded", got.Diagnostics)
	}
}

func TestCollectMissingExecutable(t *testing.T) {
	got := testCollector().Collect(context.Background(), "/nonexistent/mcpcrawl-test-binary")

	if got.Success {
		t.Error("Collect() Success = true for a command that cannot start")
	}
	if got.ErrorText == "" {
		t.Error("Collect() recorded no error text")
	}
	if got.Tools == nil || got.Resources == nil || got.Prompts == nil {
		t.Error("Collect() capability slices must be empty, not nil")
	}
}
