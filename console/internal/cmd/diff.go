package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/anavsan/anavsan/console/internal/catalog"
	"github.com/anavsan/anavsan/console/internal/diffview"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff [<original.sql> <optimized.sql>]",
		Short: "Compare two SQL files, or a recommendation's rewrite, side by side",
		Args:  cobra.RangeArgs(0, 2),
		RunE:  runDiff,
	}
	cmd.Flags().String("rec", "", "recommendation id to compare instead of files")
	cmd.Flags().IntP("width", "w", 0, "output width (default: terminal width)")
	return cmd
}

func runDiff(cmd *cobra.Command, args []string) error {
	rec, _ := cmd.Flags().GetString("rec")
	var original, optimized string
	switch {
	case rec != "" && len(args) > 0:
		return errors.New("pass either --rec or two files, not both")
	case rec != "":
		r, ok := catalog.Load().Recommendation(rec)
		if !ok {
			return fmt.Errorf("recommendation %q not found", rec)
		}
		if !r.HasDiff() {
			return fmt.Errorf("recommendation %q has no SQL to compare", rec)
		}
		original, optimized = r.OriginalSQL, r.OptimizedSQL
	case len(args) == 2:
		a, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read original: %w", err)
		}
		b, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("read optimized: %w", err)
		}
		original, optimized = string(a), string(b)
	default:
		return errors.New("diff needs two files or --rec")
	}

	width, _ := cmd.Flags().GetInt("width")
	if width <= 0 {
		width = 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, diffview.Render(original, optimized, width))
	st := diffview.StatsOf(diffview.Compute(original, optimized))
	if !st.Changed() {
		_, _ = fmt.Fprintln(out, "No changes.")
		return nil
	}
	_, _ = fmt.Fprintf(out, "%d removed, %d added\n", st.Removed, st.Added)
	return nil
}
