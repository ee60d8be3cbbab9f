// Package main provides the titan binary, which rolls and evaluates
// dice-pool checks from the command line.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
