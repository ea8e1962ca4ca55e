// Package main provides the surveyforge CLI.
package main

import (
	"os"

	"github.com/surveyforge/surveyforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
