package main

import (
	"bitvcheck/internal/cli"
	_ "bitvcheck/internal/rules/checks"
)

// Set at build time, e.g. -ldflags "-X main.version=v1.2.0".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
