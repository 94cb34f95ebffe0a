// lowcode CLI: manage saved pages and templates from the terminal.
//
// Usage:
//
//	lowcode <command> [flags]
//
// Commands:
//
//	projects   List, show, export, import and delete projects
//	templates  List, show and create templates
//	inspect    Report on the shape of a saved page
//	catalog    List the available component types
//	version    Print version information
package main

import (
	"fmt"
	"os"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
