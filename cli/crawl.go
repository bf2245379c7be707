package cli

import (
	"fmt"
	"time"

	"github.com/e14z/mcpcrawl/crawler"
	"github.com/spf13/cobra"
)

var (
	limitFlag       int
	parallelismFlag int
	forceFlag       bool

	crawlCmd = &cobra.Command{
		Use:   "crawl",
		Short: "Discover MCP packages on npm, probe each one, and store the results",
		RunE:  runCrawl,
	}
)

func init() {
	crawlCmd.Flags().IntVarP(&limitFlag, "limit", "n", 0, "Maximum number of packages to crawl")
	crawlCmd.Flags().IntVarP(&parallelismFlag, "parallelism", "p", 0, "Concurrent probe attempts")
	crawlCmd.Flags().BoolVar(&forceFlag, "force", false, "Bypass the registry response cache")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := crawler.Options{
		Limit:        cfg.Limit,
		Parallelism:  cfg.Parallelism,
		ResponseWait: cfg.ResponseWait.Std(),
		GracePeriod:  cfg.GracePeriod.Std(),
		ForceUpdate:  forceFlag,
	}
	if limitFlag > 0 {
		opts.Limit = limitFlag
	}
	if parallelismFlag > 0 {
		opts.Parallelism = parallelismFlag
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := crawler.New(st, opts)
	if err != nil {
		return err
	}
	if cfg.RegistryURL != "" {
		c.Registry.BaseURL = cfg.RegistryURL
	}

	stats, err := c.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Crawl finished in %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Printf("  discovered: %d\n", stats.Discovered)
	fmt.Printf("  connected:  %d\n", stats.Connected)
	fmt.Printf("  failed:     %d\n", stats.Failed)
	fmt.Printf("  stored:     %d\n", stats.Stored)
	return nil
}
