// Command cutlaw runs machining calculations from the command line.
package main

import (
	"os"

	"github.com/alexshd/cutlaw/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
