package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	filestore "github.com/trampoline/sonar-connector-filestore"
)

var flipCmd = &cobra.Command{
	Use:   "flip <store> <area> <target-store> <target-area>",
	Short: "Hand an area's files over to another store",
	Long: `Move every entry of <area> into <target-area>/<store>/ of the target store,
staging through the target's tmp area so an interrupted flip can be completed
later with "recover".`,
	Args: cobra.ExactArgs(4),
	RunE: runFlip,
}

var recoverCmd = &cobra.Command{
	Use:   "recover <store> <source-store> <area>",
	Short: "Complete interrupted flips",
	Long:  "Place everything left in the store's tmp area into <area>/<source-store>/.",
	Args:  cobra.ExactArgs(3),
	RunE:  runRecover,
}

func init() {
	flipCmd.Flags().Bool("unique-names", true, "merge staged entries into the target directory instead of keeping one directory per flip")
	recoverCmd.Flags().Bool("unique-names", true, "merge staged entries into the target directory instead of keeping one directory per flip")
	rootCmd.AddCommand(flipCmd)
	rootCmd.AddCommand(recoverCmd)
}

func runFlip(cmd *cobra.Command, args []string) error {
	unique, _ := cmd.Flags().GetBool("unique-names")
	if args[0] == args[2] {
		return errors.New("source and target store must differ")
	}

	src, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	dst, err := openStore(cmd.Context(), args[2])
	if err != nil {
		return err
	}

	before, err := src.AreaFiles(args[1], 0)
	if err != nil {
		return err
	}
	if err := src.Flip(args[1], dst, args[3], filestore.WithUniqueNames(unique)); err != nil {
		return err
	}
	after, err := src.AreaFiles(args[1], 0)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "flipped %d files from %s/%s to %s/%s\n", len(before)-len(after), args[0], args[1], args[2], args[3])
	return nil
}

func runRecover(cmd *cobra.Command, args []string) error {
	unique, _ := cmd.Flags().GetBool("unique-names")

	s, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return s.Recover(args[1], args[2], filestore.WithUniqueNames(unique))
}
