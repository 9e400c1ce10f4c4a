package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	filestore "github.com/trampoline/sonar-connector-filestore"
	"github.com/trampoline/sonar-connector-filestore/internal/archive"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <store> <area>",
	Short: "Write a tar.zst snapshot of an area",
	Long:  "Write every file of an area into a zstd-compressed tar archive. The area is only read.",
	Args:  cobra.ExactArgs(2),
	RunE:  runArchive,
}

func init() {
	archiveCmd.Flags().StringP("output", "o", "-", "archive file, - for stdout")
	archiveCmd.Flags().Int("level", 2, "compression level, 1 (fastest) to 3 (best)")
	rootCmd.AddCommand(archiveCmd)
}

func runArchive(cmd *cobra.Command, args []string) (err error) {
	output, _ := cmd.Flags().GetString("output")
	level, _ := cmd.Flags().GetInt("level")

	s, err := openStore(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !s.HasArea(args[1]) {
		return errors.Errorf("%w: %q in store %q", filestore.ErrInvalidArea, args[1], args[0])
	}
	dir, err := s.AreaPath(args[1])
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return errors.Errorf("create %s: %w", output, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		w = f
	}

	n, err := archive.New(level).Write(w, dir)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "archived %d files from %s/%s\n", n, args[0], args[1])
	return nil
}
