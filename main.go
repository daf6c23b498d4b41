package main

import (
	"os"

	"github.com/creativeprojects/imapmirror/cmd"
)

// set by the build
var (
	version = "0.0.0-dev"
	commit  = ""
	date    = ""
	builtBy = ""
)

func main() {
	cmd.SetApp(version, commit, date, builtBy)
	os.Exit(cmd.Execute())
}
