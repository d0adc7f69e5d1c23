// Command statecore checks statechart definitions, queries their structure,
// records execution traces and reconstructs their stories.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/statecore/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
