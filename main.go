// Package main is the entry point for the modscan CLI.
package main

import "modscan.dev/pkg/modscan/cmd"

func main() {
	cmd.Execute()
}
