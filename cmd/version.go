package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print the zappifest version",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipConfigCheck,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "zappifest "+version)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
