package main

import (
	"os"

	"activityboard/cmd/boardctl/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)

	// Command errors are printed by the commands package
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
