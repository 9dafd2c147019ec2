package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X ...commands.Version=v1.2.3".
var Version = "dev"

// NewVersionCommand reports the build version.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s/%s)\n",
				cliExecutable, Version, runtime.GOOS, runtime.GOARCH)
		},
	}
}
