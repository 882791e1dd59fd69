package cli

import (
	"github.com/spf13/cobra"

	"mrdoc/internal/version"
)

// addVersionCommand adds the version command
func (app *App) addVersionCommand(rootCmd *cobra.Command) {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version of mrdoc with build information.`,
		Args:  cobra.NoArgs,
		// Version output must not depend on a valid configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			detailed, _ := cmd.Flags().GetBool("detailed")
			if detailed {
				writeLines(cmd.OutOrStdout(), version.GetDetailedVersion())
			} else {
				writeLines(cmd.OutOrStdout(), version.GetFormattedVersion())
			}
		},
	}

	versionCmd.Flags().Bool("detailed", false, "Show detailed version information")
	rootCmd.AddCommand(versionCmd)
}
