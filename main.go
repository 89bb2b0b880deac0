// Package main is the entry point for the confounds application
package main

import (
	"github.com/ethpandaops/confounds/cmd"
)

func main() {
	cmd.Execute()
}
