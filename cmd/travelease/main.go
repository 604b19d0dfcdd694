package main

import (
	"os"

	"github.com/travelease-dev/travelease/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
