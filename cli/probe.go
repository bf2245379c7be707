package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/e14z/mcpcrawl/probe"
	"github.com/morikuni/failure/v2"
	"github.com/spf13/cobra"
)

var (
	waitFlag int

	probeCmd = &cobra.Command{
		Use:   "probe <command>...",
		Short: "Probe a single MCP server command and print what it reports",
		Long: `probe spawns the given launch command as an MCP server, performs the
initialize handshake, lists its tools, resources, and prompts, and prints
the outcome as JSON. The command is passed as arguments:

  mcpcrawl probe npx @modelcontextprotocol/server-github`,
		RunE: runProbe,
	}
)

func init() {
	probeCmd.Flags().IntVarP(&waitFlag, "wait", "w", 0, "Per-response wait bound in seconds")
}

func runProbe(cmd *cobra.Command, args []string) error {
	command := strings.TrimSpace(strings.Join(args, " "))
	if command == "" {
		return failure.New(NoCommandSpecified,
			failure.Message("No server command specified"),
		)
	}

	collector := probe.NewCollector()
	if waitFlag > 0 {
		collector.ResponseWait = time.Duration(waitFlag) * time.Second
	}

	outcome := collector.Collect(cmd.Context(), command)
	signal := probe.ExtractAuthSignal(outcome)

	result := struct {
		Outcome probe.Outcome    `json:"outcome"`
		Auth    probe.AuthSignal `json:"auth"`
	}{Outcome: outcome, Auth: signal}

	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return failure.Wrap(err)
	}

	fmt.Println(string(b))
	return nil
}
