package main

import (
	"codemine/internal/cli"
	_ "codemine/internal/language/golang"
	_ "codemine/internal/language/javascript"
)

// These variables are populated by the build via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
