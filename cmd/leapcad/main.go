// Package main provides the LeapCAD command-line entry point.
package main

import (
	"os"

	"github.com/leapstack-labs/leapcad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
