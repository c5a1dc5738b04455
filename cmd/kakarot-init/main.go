package main

import (
	"os"

	"github.com/kkrt-labs/kakarot-init/cmd/kakarot-init/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
