// Package mcpserver exposes the crawled corpus over the Model Context
// Protocol.
//
// The mcpserver package provides:
// - MCP server implementation over stdio
// - A search tool over the stored records
// - A live probe tool for ad-hoc investigation of one server
package mcpserver
