package main

import (
	"os"

	"github.com/moleswap/moleswap-svc/internal/cli"
)

func main() {
	if !cli.Run(os.Args) {
		os.Exit(1)
	}
}
