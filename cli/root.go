package cli

import (
	"fmt"

	"github.com/e14z/mcpcrawl/config"
	"github.com/e14z/mcpcrawl/log"
	"github.com/e14z/mcpcrawl/mcpserver"
	"github.com/e14z/mcpcrawl/probe"
	"github.com/e14z/mcpcrawl/store"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	configFlag   string
	databaseFlag string

	// Root command
	rootCmd = &cobra.Command{
		Use:           "mcpcrawl",
		Short:         "Discover, probe, and index MCP servers",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `mcpcrawl discovers Model Context Protocol server packages on the npm
registry, connects to each one to find out what it can actually do, and
stores the results in a local SQLite database that can be searched from the
command line or served back to MCP clients.`,
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("mcpcrawl version %s\n", probe.Version)
			if probe.VersionCommit != "" {
				fmt.Printf("  commit: %s\n", probe.VersionCommit)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&databaseFlag, "db", "", "Path to the SQLite database")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(mcpserver.Command(openStore))
}

// Run executes the main CLI functionality
func Run() error {
	log.EnableGlobalHTTP()
	return rootCmd.Execute()
}

// loadConfig reads the configuration file and applies flag overrides
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return config.Config{}, err
	}
	if databaseFlag != "" {
		cfg.DatabasePath = databaseFlag
	}
	return cfg, nil
}

// openStore opens the record store at the configured database path
func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg.DatabasePath)
}
