package probe

import (
	"context"
	"strings"
	"time"

	"github.com/e14z/mcpcrawl/log"
	"github.com/morikuni/failure/v2"
)

// Outcome is the immutable result of one connection attempt. It is the only
// value the collector hands to downstream consumers; every failure mode is
// folded into it.
type Outcome struct {
	Success         bool                 `json:"success"`
	ProtocolVersion string               `json:"protocol_version,omitempty"`
	ServerInfo      map[string]any       `json:"server_info,omitempty"`
	Capabilities    map[string]any       `json:"capabilities,omitempty"`
	Tools           []ToolDescriptor     `json:"tools"`
	Resources       []ResourceDescriptor `json:"resources"`
	Prompts         []PromptDescriptor   `json:"prompts"`
	Diagnostics     string               `json:"diagnostics,omitempty"`
	ErrorText       string               `json:"error,omitempty"`
}

// FunctionalityCount returns the total number of capabilities the server
// reported across tools, resources, and prompts
func (o Outcome) FunctionalityCount() int {
	return len(o.Tools) + len(o.Resources) + len(o.Prompts)
}

// Collector drives one full connection attempt: spawn, negotiate, the three
// capability listings in fixed order, then guaranteed termination.
type Collector struct {
	Supervisor   *Supervisor
	Client       ClientInfo
	ResponseWait time.Duration
}

// NewCollector creates a collector with default supervision settings
func NewCollector() *Collector {
	return &Collector{
		Supervisor: NewSupervisor(),
		Client:     ClientInfo{Name: "mcpcrawl", Version: Version},
	}
}

// Collect connects to the server behind the launch command and gathers what
// it actually reports. It never returns an error: spawn and protocol
// failures are recorded on the outcome, and the child process is terminated
// on every path.
func (c *Collector) Collect(ctx context.Context, command string) Outcome {
	out := Outcome{
		Tools:     []ToolDescriptor{},
		Resources: []ResourceDescriptor{},
		Prompts:   []PromptDescriptor{},
	}

	sup := c.Supervisor
	if sup == nil {
		sup = NewSupervisor()
	}

	handle, err := sup.Spawn(ctx, command)
	if err != nil {
		if handle != nil {
			out.Diagnostics = handle.Stderr()
			handle.Terminate()
		}
		out.ErrorText = errorText(err)
		log.Debug("Spawn failed", "command", command, "error", out.ErrorText)
		return out
	}
	defer handle.Terminate()

	session := NewSession(handle, c.Client)
	session.ResponseWait = c.ResponseWait

	negotiated, err := session.Negotiate()
	if err != nil {
		out.ErrorText = errorText(err)
		out.Diagnostics = extendText(session.StartupDiagnostics(), handle.Stderr())
		return out
	}

	out.Success = true
	out.ProtocolVersion = negotiated.ProtocolVersion
	out.ServerInfo = negotiated.ServerInfo
	out.Capabilities = negotiated.Capabilities
	out.Diagnostics = session.StartupDiagnostics()

	// Fixed order. A failed listing stops further probing of a
	// non-compliant server but keeps everything gathered so far; its
	// failure is appended to the diagnostics, and Success still reflects
	// the negotiation alone.
	tools, err := session.ListTools()
	if err != nil {
		out.Diagnostics = extendText(out.Diagnostics, methodListTools+": "+errorText(err))
		return out
	}
	out.Tools = tools

	resources, err := session.ListResources()
	if err != nil {
		out.Diagnostics = extendText(out.Diagnostics, methodListResources+": "+errorText(err))
		return out
	}
	out.Resources = resources

	prompts, err := session.ListPrompts()
	if err != nil {
		out.Diagnostics = extendText(out.Diagnostics, methodListPrompts+": "+errorText(err))
		return out
	}
	out.Prompts = prompts

	log.Debug("Capability collection complete",
		"command", command,
		"tools", len(out.Tools),
		"resources", len(out.Resources),
		"prompts", len(out.Prompts),
	)
	return out
}

// errorText prefers the user-facing failure message over the full error chain
func errorText(err error) string {
	if msg := failure.MessageOf(err); msg != "" {
		return msg.String()
	}
	return err.Error()
}

// extendText appends to accumulated diagnostic text without overwriting it
func extendText(existing, addition string) string {
	addition = strings.TrimSpace(addition)
	if addition == "" {
		return existing
	}
	if existing == "" {
		return addition + "\n"
	}
	if !strings.HasSuffix(existing, "\n") {
		existing += "\n"
	}
	return existing + addition + "\n"
}
