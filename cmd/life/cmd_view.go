package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lifetrace/internal/core"
	"lifetrace/pkg/sims/life"
)

func newShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the board",
		Long: `Prints the board with 'o' for live cells and '.' for dead ones.

--at shows another step without changing the saved board. --ages prints
each live cell's age (0-9, '+' for older) instead of 'o'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			sim, err := e.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("at") {
				at, _ := cmd.Flags().GetUint64("at")
				sim.StepTo(at)
			}

			fmt.Fprintf(e.out, "step %d\n", sim.CurrentStep())
			if ages, _ := cmd.Flags().GetBool("ages"); ages {
				return writeAges(e.out, sim)
			}
			return sim.EncodeText(e.out)
		},
	}
	cmd.Flags().Uint64("at", 0, "Show this step instead of the current one")
	cmd.Flags().Bool("ages", false, "Print cell ages instead of glyphs")
	return cmd
}

// writeAges prints one row per line with the age of each live cell.
func writeAges(w io.Writer, sim *life.Simulation) error {
	grid := core.NewByteGrid(sim.Width(), sim.Height())
	grid.Rasterize(sim)

	bw := bufio.NewWriter(w)
	for y := 0; y < grid.H; y++ {
		for x := 0; x < grid.W; x++ {
			bw.WriteByte(ageGlyph(grid.At(x, y)))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func ageGlyph(v uint8) byte {
	switch {
	case v == 0:
		return byte(life.DeadGlyph)
	case v <= 10:
		return '0' + v - 1
	default:
		return '+'
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the board, its rules and its timeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			sim, err := e.load()
			if err != nil {
				return err
			}
			fi, err := os.Stat(e.file)
			if err != nil {
				return err
			}

			fmt.Fprintf(e.out, "%s (%s, saved %s)\n", e.file, humanize.Bytes(uint64(fi.Size())), humanize.Time(fi.ModTime()))
			for _, line := range core.Describe(sim).Lines() {
				fmt.Fprintln(e.out, line)
			}
			if steps := sim.EditedSteps(); len(steps) > 0 {
				fmt.Fprintf(e.out, "Edited at: %s\n", formatSteps(steps, 12))
			}
			area := sim.Size().Area()
			fmt.Fprintf(e.out, "Density: %.1f%% of %s cells\n",
				100*float64(sim.Population())/float64(area), humanize.Comma(int64(area)))
			if !e.noIndex {
				fmt.Fprintln(e.out, e.indexLine())
			}
			return nil
		},
	}
}

// indexLine reports what the save index knows about the board file.
func (e *env) indexLine() string {
	abs, err := filepath.Abs(e.file)
	if err != nil {
		abs = e.file
	}
	idx, err := e.openIndex()
	if err != nil {
		e.log.Warn("opening save index failed", "err", err)
		return "Index: unavailable"
	}
	defer idx.Close()

	entry, ok, err := idx.Lookup(context.Background(), abs)
	switch {
	case err != nil:
		e.log.Warn("looking up save failed", "file", abs, "err", err)
		return "Index: unavailable"
	case !ok:
		return "Index: not recorded"
	default:
		return fmt.Sprintf("Index: recorded %s at step %d", humanize.Time(entry.SavedAt), entry.Step)
	}
}

// formatSteps lists up to limit steps, then a count of the rest.
func formatSteps(steps []uint64, limit int) string {
	parts := make([]string, 0, min(len(steps), limit))
	for i, s := range steps {
		if i == limit {
			break
		}
		parts = append(parts, strconv.FormatUint(s, 10))
	}
	out := strings.Join(parts, ", ")
	if extra := len(steps) - limit; extra > 0 {
		out += fmt.Sprintf(" and %d more", extra)
	}
	return out
}
