package probe

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/morikuni/failure/v2"
)

const (
	// DefaultResponseWait bounds each single-line response read
	DefaultResponseWait = 30 * time.Second

	// stderrPeekWait bounds the pre-request diagnostic stream peek
	stderrPeekWait = 100 * time.Millisecond
)

// ErrServerError is returned when the server answers a request with a
// JSON-RPC error object instead of a result
const ErrServerError ErrorCode = "ServerError"

// Session drives the line-delimited JSON-RPC exchange with one spawned
// server. It takes exclusive ownership of the handle's streams for the
// duration of one connection attempt; requests are strictly sequential and a
// Session must not be used from multiple goroutines.
type Session struct {
	// ResponseWait overrides DefaultResponseWait when positive
	ResponseWait time.Duration

	handle *Handle
	client ClientInfo
	nextID int64

	startupDiagnostics string
}

// NewSession creates a session over the given handle's streams
func NewSession(h *Handle, client ClientInfo) *Session {
	return &Session{handle: h, client: client}
}

// Negotiate performs the initialize handshake. Before issuing the first
// request it peeks the diagnostic stream and keeps any text already buffered
// there; that text stays available through StartupDiagnostics even when the
// handshake succeeds.
func (s *Session) Negotiate() (*NegotiateResult, error) {
	s.startupDiagnostics = s.handle.PeekStderr(stderrPeekWait)

	params := initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities: clientCapabilities{
			Roots: rootsCapability{ListChanged: true},
		},
		ClientInfo: s.client,
	}

	var result NegotiateResult
	if err := s.call(methodInitialize, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTools requests the server's declared tools
func (s *Session) ListTools() ([]ToolDescriptor, error) {
	var result toolsResult
	if err := s.call(methodListTools, struct{}{}, &result); err != nil {
		return nil, err
	}
	tools := make([]ToolDescriptor, 0, len(result.Tools))
	for _, t := range result.Tools {
		tools = append(tools, t.descriptor())
	}
	return tools, nil
}

// ListResources requests the server's declared resources
func (s *Session) ListResources() ([]ResourceDescriptor, error) {
	var result resourcesResult
	if err := s.call(methodListResources, struct{}{}, &result); err != nil {
		return nil, err
	}
	if result.Resources == nil {
		return []ResourceDescriptor{}, nil
	}
	return result.Resources, nil
}

// ListPrompts requests the server's declared prompts
func (s *Session) ListPrompts() ([]PromptDescriptor, error) {
	var result promptsResult
	if err := s.call(methodListPrompts, struct{}{}, &result); err != nil {
		return nil, err
	}
	if result.Prompts == nil {
		return []PromptDescriptor{}, nil
	}
	return result.Prompts, nil
}

// StartupDiagnostics returns the diagnostic text captured before the first
// request was written
func (s *Session) StartupDiagnostics() string {
	return s.startupDiagnostics
}

// call serializes one request, writes it as a single line, and reads exactly
// one response line within the response wait bound
func (s *Session) call(method string, params any, result any) error {
	s.nextID++
	req := Request{
		JSONRPC: protocolMarker,
		ID:      s.nextID,
		Method:  method,
		Params:  params,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return failure.Wrap(err, failure.Context{"method": method})
	}
	payload = append(payload, '\n')

	if _, err := s.handle.stdin.Write(payload); err != nil {
		return failure.New(ErrTransportWrite,
			failure.Message("Failed to write request to server"),
			failure.Context{"method": method, "cause": err.Error()},
		)
	}

	line, err := s.readLine()
	if err != nil {
		return err
	}

	var resp Response
	if err := json.Unmarshal([]byte(line), &resp); err != nil {
		return failure.New(ErrMalformedResponse,
			failure.Message("Invalid JSON response"),
			failure.Context{"method": method, "raw": clip(line, 200)},
		)
	}

	if resp.Error != nil {
		return failure.New(ErrServerError,
			failure.Message("Server returned an error: "+resp.Error.Message),
			failure.Context{"method": method},
		)
	}
	if len(resp.Result) == 0 {
		return failure.New(ErrMalformedResponse,
			failure.Message("Response carries neither result nor error"),
			failure.Context{"method": method, "raw": clip(line, 200)},
		)
	}

	if err := json.Unmarshal(resp.Result, result); err != nil {
		return failure.New(ErrMalformedResponse,
			failure.Message("Unexpected result shape"),
			failure.Context{"method": method, "raw": clip(line, 200)},
		)
	}
	return nil
}

// readLine reads one line from the server's output stream with a bounded
// wait. The read itself runs in a goroutine; on timeout it stays blocked
// until process termination closes the stream, which the collector
// guarantees before the attempt ends.
func (s *Session) readLine() (string, error) {
	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		line, err := s.handle.stdout.ReadString('\n')
		ch <- readResult{line: line, err: err}
	}()

	wait := s.ResponseWait
	if wait <= 0 {
		wait = DefaultResponseWait
	}

	select {
	case r := <-ch:
		line := strings.TrimSpace(r.line)
		if line == "" {
			return "", failure.New(ErrNoResponse,
				failure.Message("No response from server"),
			)
		}
		return line, nil
	case <-time.After(wait):
		return "", failure.New(ErrNoResponse,
			failure.Message("No response from server"),
			failure.Context{"wait": wait.String()},
		)
	}
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
