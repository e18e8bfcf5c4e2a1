// Package main provides the entry point for the recap CLI.
package main

import (
	"github.com/aewiki/recap-cli/internal/cli"
)

func main() {
	cli.Execute()
}
