package cmd

import (
	"github.com/spf13/cobra"
)

var scrubCmd = &cobra.Command{
	Use:   "scrub <store> <area>",
	Short: "Remove empty subdirectories of an area",
	Args:  cobra.ExactArgs(2),
	RunE:  runScrub,
}

func init() {
	rootCmd.AddCommand(scrubCmd)
}

func runScrub(cmd *cobra.Command, args []string) error {
	s, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return s.Scrub(args[1])
}
