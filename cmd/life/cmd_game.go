package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifetrace/pkg/core"
	"lifetrace/pkg/sims/life"
)

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty (or randomly seeded) board",
		Long: `Creates a board at step 0 using the configured size and rules.

Flags override the config for this board only. With --density the board is
seeded with random cells; the seeding is recorded as edits at step 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(e.file); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", e.file)
			}

			settings := e.cfg.Settings()
			if cmd.Flags().Changed("width") {
				settings.Width, _ = cmd.Flags().GetInt("width")
			}
			if cmd.Flags().Changed("height") {
				settings.Height, _ = cmd.Flags().GetInt("height")
			}
			if bounded, _ := cmd.Flags().GetBool("bounded"); bounded {
				settings.Toroidal = false
			}

			sim, err := life.New(settings, e.options()...)
			if err != nil {
				return err
			}

			density, _ := cmd.Flags().GetFloat64("density")
			if density < 0 || density > 1 {
				return fmt.Errorf("density %v outside [0,1]", density)
			}
			if density > 0 {
				seed, _ := cmd.Flags().GetInt64("seed")
				if !cmd.Flags().Changed("seed") {
					seed = time.Now().UnixNano()
				}
				sim.Scatter(core.NewRNG(seed), density)
				e.log.Info("board seeded", "seed", seed, "density", density, "population", sim.Population())
			}

			if err := e.save(sim); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "created %s: %s\n", e.file, settings)
			return nil
		},
	}

	cmd.Flags().Int("width", 0, "Board width (default from config)")
	cmd.Flags().Int("height", 0, "Board height (default from config)")
	cmd.Flags().Bool("bounded", false, "Cells past the edge are dead instead of wrapping")
	cmd.Flags().Float64("density", 0, "Fraction of cells to bring alive at random")
	cmd.Flags().Int64("seed", 0, "Random seed for --density (default: time based)")
	cmd.Flags().Bool("force", false, "Overwrite an existing board")
	return cmd
}

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <x,y>...",
		Short: "Flip cells at the current step",
		Long: `Flips each listed cell between alive and dead. The edits are recorded at
the current step and replayed whenever the board passes through it again.
Cells outside the board are ignored.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			points, err := parsePoints(args)
			if err != nil {
				return err
			}
			sim, err := e.edit(func(sim *life.Simulation) error {
				for _, p := range points {
					sim.Toggle(p[0], p[1])
				}
				return nil
			})
			if err != nil {
				return err
			}
			e.printStatus(sim)
			return nil
		},
	}
}

func newStepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "step",
		Short: "Advance the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetUint64("count")
			sim, err := e.edit(func(sim *life.Simulation) error {
				for i := uint64(0); i < n; i++ {
					sim.Step()
				}
				return nil
			})
			if err != nil {
				return err
			}
			e.printStatus(sim)
			return nil
		},
	}
	cmd.Flags().Uint64P("count", "n", 1, "Number of steps")
	return cmd
}

func newBackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "back",
		Short: "Step the board backwards",
		Long: `Steps backwards one generation at a time. Edits made at each step that is
left behind are discarded. Stepping back at step 0 does nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			n, _ := cmd.Flags().GetUint64("count")
			sim, err := e.edit(func(sim *life.Simulation) error {
				for i := uint64(0); i < n && sim.CurrentStep() > 0; i++ {
					sim.StepBack()
				}
				return nil
			})
			if err != nil {
				return err
			}
			e.printStatus(sim)
			return nil
		},
	}
	cmd.Flags().Uint64P("count", "n", 1, "Number of steps")
	return cmd
}

func newGotoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "goto <step>",
		Short: "Replay the board to any step",
		Long: `Rebuilds the board at the given step by replaying from step 0 with every
recorded edit. Edits are kept, so going back and forth is lossless.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid step %q: must be a non-negative integer", args[0])
			}
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			sim, err := e.edit(func(sim *life.Simulation) error {
				sim.StepTo(target)
				return nil
			})
			if err != nil {
				return err
			}
			e.printStatus(sim)
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Kill every cell and forget all edits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			sim, err := e.edit(func(sim *life.Simulation) error {
				sim.Clear()
				return nil
			})
			if err != nil {
				return err
			}
			e.printStatus(sim)
			return nil
		},
	}
}

var errBadPoint = errors.New("cells are written as x,y")

// parsePoints reads "x,y" arguments.
func parsePoints(args []string) ([][2]int, error) {
	points := make([][2]int, 0, len(args))
	for _, arg := range args {
		xs, ys, ok := strings.Cut(arg, ",")
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadPoint, arg)
		}
		x, err := strconv.Atoi(strings.TrimSpace(xs))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errBadPoint, arg)
		}
		y, err := strconv.Atoi(strings.TrimSpace(ys))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", errBadPoint, arg)
		}
		points = append(points, [2]int{x, y})
	}
	return points, nil
}
