package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lumipallolabs/dupedive/internal/core"
	"github.com/lumipallolabs/dupedive/internal/review"
)

var prune bool

var scanCmd = &cobra.Command{
	Use:   "scan <dir>",
	Short: "Scan a directory and print its duplicate sets",
	Long: `Scan a directory without the interactive interface and print every set of
identical files using the report template.

With --prune the first file of each set is kept and the other copies are
deleted. Without it nothing is removed.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&prune, "prune", false, "Keep the first file of each set and delete the rest")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, opts, err := controllerOptions(cmd)
	if err != nil {
		return err
	}
	opts.Watch = false

	dir, err := resolveDir(args, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	return scanAndReport(ctx, cmd.OutOrStdout(), opts, cfg.ReportTemplate, dir, prune)
}

// scanAndReport runs one scan and walks its review to the end
func scanAndReport(ctx context.Context, out io.Writer, opts core.Options, template, dir string, prune bool) error {
	rep, err := newReporter(out, template)
	if err != nil {
		return err
	}

	ctrl := core.NewController(opts, rep)
	defer ctrl.Stop()
	rep.src = ctrl

	if err := ctrl.Run(ctx, dir); err != nil {
		return err
	}
	// The review shrinks the sets as files go
	reclaimable := int64(0)
	if res := ctrl.ScanState().Result; res != nil {
		for _, g := range res.Groups {
			reclaimable += g.WastedBytes()
		}
	}

	for ctrl.Phase() == review.PhasePresenting {
		rep.flush()
		if !prune {
			if err := ctrl.Next(); err != nil {
				return err
			}
			continue
		}
		pruneCurrent(ctrl, out)
	}

	printSummary(out, ctrl, reclaimable, prune, rep.failures)
	if rep.failures > 0 {
		return fmt.Errorf("%d files could not be deleted", rep.failures)
	}
	return nil
}

// pruneCurrent deletes every member of the presented set except the first.
// A set that cannot be fully pruned is skipped.
func pruneCurrent(ctrl *core.Controller, out io.Writer) {
	g, ok := ctrl.CurrentGroup()
	if !ok {
		return
	}
	members := pathSet(g)

	for {
		cur, ok := ctrl.CurrentGroup()
		if !ok || !withinSet(members, cur) {
			return // Set resolved, the next one is presented
		}
		rec, err := ctrl.Remove(1)
		if err != nil {
			_ = ctrl.Next()
			return
		}
		fmt.Fprintf(out, "  removed %s\n", rec.Path)
	}
}

func printSummary(out io.Writer, ctrl *core.Controller, reclaimable int64, prune bool, failures int) {
	st := ctrl.State()
	res := st.Scan.Result
	if res == nil {
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Scanned:   %s files (%s) in %s\n",
		humanize.Comma(int64(res.FilesRead)), humanize.IBytes(uint64(res.BytesRead)), st.Scan.Elapsed().Round(time.Millisecond))
	fmt.Fprintf(out, "Unique:    %s\n", humanize.Comma(int64(res.Unique)))
	if res.Skipped > 0 {
		fmt.Fprintf(out, "Skipped:   %s unreadable\n", humanize.Comma(int64(res.Skipped)))
	}
	fmt.Fprintf(out, "Sets:      %d (%s reclaimable)\n", len(res.Groups), humanize.IBytes(uint64(reclaimable)))
	if prune {
		fmt.Fprintf(out, "Removed:   %d files, %s freed\n", st.Freed.Files, humanize.IBytes(uint64(st.Freed.Session)))
		if failures > 0 {
			fmt.Fprintf(out, "Failed:    %d\n", failures)
		}
	}
}
