// Command wareledger serves the warehouse inventory ledger.
package main

import (
	"fmt"
	"os"

	"github.com/wareledger/wareledger/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "wareledger: %v\n", err)
		os.Exit(1)
	}
}
