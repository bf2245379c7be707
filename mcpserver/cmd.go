package mcpserver

import (
	"github.com/e14z/mcpcrawl/store"
	"github.com/spf13/cobra"
)

// Command returns the MCP server command. The store is opened lazily so the
// database path flag is resolved first.
func Command(openStore func() (*store.Store, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the crawled corpus over the Model Context Protocol",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			server := NewServer(st)
			return server.Run()
		},
	}
}
