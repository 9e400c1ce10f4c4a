package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var lsCmd = &cobra.Command{
	Use:   "ls <store> <area>",
	Short: "List files in an area",
	Long:  "List every file below an area, recursively, optionally capped and filtered by a glob such as '**/*.eml'.",
	Args:  cobra.ExactArgs(2),
	RunE:  runLs,
}

func init() {
	lsCmd.Flags().Int("max", 0, "list at most this many files (0: all)")
	lsCmd.Flags().String("match", "", "only list files matching this glob")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	maxFiles, _ := cmd.Flags().GetInt("max")
	pattern, _ := cmd.Flags().GetString("match")
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return errors.Errorf("invalid pattern %q", pattern)
	}

	s, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	// the cap applies after filtering
	limit := maxFiles
	if pattern != "" {
		limit = 0
	}
	files, err := s.AreaFiles(args[1], limit)
	if err != nil {
		return err
	}

	count := 0
	for _, file := range files {
		if pattern != "" {
			ok, err := doublestar.Match(pattern, filepath.ToSlash(file))
			if err != nil {
				return errors.Errorf("match %q: %w", pattern, err)
			}
			if !ok {
				continue
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), file)
		count++
		if maxFiles > 0 && count >= maxFiles {
			break
		}
	}

	if count == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no files)")
	}
	return nil
}
