// Package cli implements the command-line interface for mcpcrawl.
//
// The cli package provides:
// - Command-line argument parsing and validation
// - The crawl pipeline entry point
// - Ad-hoc probing of a single server command
// - The MCP server command exposing the crawled corpus
package cli
