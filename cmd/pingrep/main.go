package main

import (
	"os"

	"github.com/pingrep/pingrep/cmd/pingrep/commands"
)

func main() {
	if err := commands.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
