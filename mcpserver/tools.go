package mcpserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/store"
	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

func InitTools(st *store.Store) []server.ServerTool {
	tools := []server.ServerTool{}

	tools = append(tools, newServerTool(SearchMCPs(st)))
	tools = append(tools, newServerTool(ProbeMCP()))

	return tools
}

// SearchMCPs queries the stored corpus by free text
func SearchMCPs(st *store.Store) (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"search_mcps",
			mcp.WithDescription("Search crawled MCP servers by name, description, category, or tag"),
			mcp.WithString("query", mcp.Description("Free-text search query; empty returns the best-scored servers")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Query string `json:"query" validate:"omitempty"`
				Limit int    `json:"limit" validate:"omitempty,min=1,max=100"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			records, err := st.Search(ctx, args.Query, args.Limit)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			type SearchResult struct {
				Count   int            `json:"count"`
				Results []store.Record `json:"results"`
			}

			b, err := json.Marshal(SearchResult{Count: len(records), Results: records})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return mcp.NewToolResultText(string(b)), nil
		}
}

// ProbeMCP runs one live connection attempt against an arbitrary launch
// command
func ProbeMCP() (tool mcp.Tool, handler server.ToolHandlerFunc) {
	return mcp.NewTool(
			"probe_mcp",
			mcp.WithDescription("Spawn an MCP server command, perform the handshake, and report its capabilities"),
			mcp.WithString("command", mcp.Required(), mcp.Description("Launch command, e.g. 'npx @modelcontextprotocol/server-github'")),
			mcp.WithNumber("wait_seconds", mcp.Description("Per-response wait bound in seconds (default 30)")),
		), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			type ToolArguments struct {
				Command     string `json:"command" validate:"required"`
				WaitSeconds int    `json:"wait_seconds" validate:"omitempty,min=1,max=300"`
			}
			var args ToolArguments
			if err := mapstructure.Decode(req.Params.Arguments, &args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if err := validate.StructCtx(ctx, args); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			collector := probe.NewCollector()
			if args.WaitSeconds > 0 {
				collector.ResponseWait = time.Duration(args.WaitSeconds) * time.Second
			}

			outcome := collector.Collect(ctx, args.Command)
			signal := probe.ExtractAuthSignal(outcome)

			type ProbeResult struct {
				Outcome probe.Outcome    `json:"outcome"`
				Auth    probe.AuthSignal `json:"auth"`
			}

			b, err := json.Marshal(ProbeResult{Outcome: outcome, Auth: signal})
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			return mcp.NewToolResultText(string(b)), nil
		}
}
