package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create configured stores",
	Long:  "Create the directory skeleton of every configured store. Existing directories are kept.",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	names := storeNames()
	if len(names) == 0 {
		return errors.New("no stores configured")
	}

	for _, name := range names {
		s, err := openStore(cmd.Context(), name)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%v\n", s.Path(), s.Areas())
	}
	return nil
}
