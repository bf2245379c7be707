// Command mcpcrawl discovers, probes, and indexes Model Context Protocol
// servers from the npm registry.
package main

import (
	"fmt"
	"os"

	"github.com/e14z/mcpcrawl/cli"
	"github.com/morikuni/failure/v2"
)

func main() {
	if err := cli.Run(); err != nil {
		var userMessage string
		if fmsg := failure.MessageOf(err); fmsg != "" {
			userMessage = fmsg.String()
		} else {
			userMessage = err.Error()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", userMessage)
		os.Exit(1)
	}
}
