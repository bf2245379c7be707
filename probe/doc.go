// Package probe implements the MCP protocol client used to learn a server's
// actual capabilities.
//
// The probe package provides:
// - Subprocess supervision with a startup grace period and guaranteed cleanup
// - A line-delimited JSON-RPC session over the child's stdio
// - Capability collection (initialize, tools/list, resources/list, prompts/list)
// - Heuristic extraction of authentication requirements from failure output
package probe
