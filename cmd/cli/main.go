package main

import (
	"os"

	"github.com/manageday-dev/manageday/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
