package cmd

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

var statusCmd = &cobra.Command{
	Use:   "status [store...]",
	Short: "Show entry counts and disk usage per area",
	Long:  "Show the number of top-level entries and the disk usage (KiB) of every area of the given stores, or of all configured stores.",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().Int("concurrency", 4, "stores inspected in parallel")
	rootCmd.AddCommand(statusCmd)
}

type areaStatus struct {
	area  string
	count int
	kb    int64
}

type storeStatus struct {
	name  string
	path  string
	areas []areaStatus
}

func runStatus(cmd *cobra.Command, args []string) error {
	names := args
	if len(names) == 0 {
		names = storeNames()
	}
	if len(names) == 0 {
		return errors.New("no stores configured")
	}
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	configs, err := resolveStores(names)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	p := pool.NewWithResults[storeStatus]().WithErrors().WithMaxGoroutines(max(concurrency, 1))
	for _, cfg := range configs {
		p.Go(func() (storeStatus, error) {
			return inspect(ctx, cfg)
		})
	}
	results, err := p.Wait()
	if err != nil {
		return err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })

	bold := color.New(color.Bold)
	pending := color.New(color.FgYellow)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, st := range results {
		fmt.Fprintf(w, "%s\t%s\n", bold.Sprint(st.name), color.New(color.Faint).Sprint(st.path))
		for _, a := range st.areas {
			count := fmt.Sprint(a.count)
			if a.count > 0 {
				count = pending.Sprint(count)
			}
			fmt.Fprintf(w, "  %s\t%s\t%d KiB\n", a.area, count, a.kb)
		}
	}
	return w.Flush()
}

func inspect(ctx context.Context, cfg storeConfig) (storeStatus, error) {
	s, err := cfg.open(ctx)
	if err != nil {
		return storeStatus{}, err
	}
	counts, err := s.AreaCounts()
	if err != nil {
		return storeStatus{}, err
	}
	sizes, err := s.AreaSizes()
	if err != nil {
		return storeStatus{}, err
	}

	st := storeStatus{name: s.Name(), path: s.Path()}
	for _, area := range s.Areas() {
		st.areas = append(st.areas, areaStatus{area: area, count: counts[area], kb: sizes[area]})
	}
	return st, nil
}
