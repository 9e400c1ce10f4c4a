package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var destroyCmd = &cobra.Command{
	Use:   "destroy <store>",
	Short: "Delete a store and everything in it",
	Args:  cobra.ExactArgs(1),
	RunE:  runDestroy,
}

func init() {
	destroyCmd.Flags().Bool("force", false, "required; confirms the deletion")
	rootCmd.AddCommand(destroyCmd)
}

func runDestroy(cmd *cobra.Command, args []string) error {
	if force, _ := cmd.Flags().GetBool("force"); !force {
		return errors.New("refusing to destroy without --force")
	}

	s, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := s.Destroy(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "destroyed %s\n", s.Path())
	return nil
}
