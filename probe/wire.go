package probe

import (
	"encoding/json"
	"sort"
)

const (
	// protocolMarker is the JSON-RPC version marker carried by every message
	protocolMarker = "2.0"

	// ProtocolVersion is the MCP protocol revision this client declares
	ProtocolVersion = "2024-11-05"

	methodInitialize    = "initialize"
	methodListTools     = "tools/list"
	methodListResources = "resources/list"
	methodListPrompts   = "prompts/list"
)

// Request is a single JSON-RPC request, written as one line. Ids are unique
// and strictly increasing within a session.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// Response is a single JSON-RPC response line. A well-formed response
// carries exactly one of Result and Error.
type Response struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error object of a JSON-RPC error response
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ClientInfo identifies this client during negotiation
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type rootsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type clientCapabilities struct {
	Roots    rootsCapability `json:"roots"`
	Sampling struct{}        `json:"sampling"`
}

type initializeParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    clientCapabilities `json:"capabilities"`
	ClientInfo      ClientInfo         `json:"clientInfo"`
}

// NegotiateResult carries what the server claims about itself. Nothing in it
// is validated; version mismatches are recorded, not rejected.
type NegotiateResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      map[string]any `json:"serverInfo"`
	Capabilities    map[string]any `json:"capabilities"`
}

// ToolDescriptor describes one tool as reported by the server
type ToolDescriptor struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Parameters  []string `json:"parameters,omitempty"`
}

// ResourceDescriptor describes one resource as reported by the server
type ResourceDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// PromptDescriptor describes one prompt as reported by the server
type PromptDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// wireTool is the raw tool object on the wire; parameter names come from the
// properties of its input schema
type wireTool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema struct {
		Properties map[string]json.RawMessage `json:"properties"`
	} `json:"inputSchema"`
}

func (t wireTool) descriptor() ToolDescriptor {
	params := make([]string, 0, len(t.InputSchema.Properties))
	for name := range t.InputSchema.Properties {
		params = append(params, name)
	}
	sort.Strings(params)
	if len(params) == 0 {
		params = nil
	}
	return ToolDescriptor{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  params,
	}
}

type toolsResult struct {
	Tools []wireTool `json:"tools"`
}

type resourcesResult struct {
	Resources []ResourceDescriptor `json:"resources"`
}

type promptsResult struct {
	Prompts []PromptDescriptor `json:"prompts"`
}
