package main

import (
	"os"

	"github.com/fragvis/fragvis-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
