package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/panyam/queuelab/cmd/queuelab/commands.Version=..." at release time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print queuelab version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "queuelab %s\n", Version)
		if GitCommit != "none" {
			fmt.Fprintf(cmd.OutOrStdout(), "Git commit: %s\n", GitCommit)
		}
		if BuildDate != "unknown" {
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", BuildDate)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
