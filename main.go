// Package main is the entry point for the harvester CLI.
package main

import "github.com/ldes-tools/harvester/cmd"

func main() {
	cmd.Execute()
}
