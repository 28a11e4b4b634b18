// Package main is the entry point for the leapdw CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/leapdw/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
