// Command kitbridge replays host sessions through the forwarding kit.
package main

import (
	"fmt"
	"os"

	"github.com/randalmurphal/kitbridge/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
