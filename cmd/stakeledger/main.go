// Command stakeledger runs the staking ledger CLI and HTTP server.
package main

import (
	"os"

	"github.com/roach88/stakeledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
