package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"lifetrace/internal/session"
	"lifetrace/internal/telemetry"
	"lifetrace/pkg/sims/life"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Advance the board many steps and record per-step statistics",
		Long: `Steps the board --steps times, recording population, births, deaths and
mean age for every generation. The rows are written as CSV to --csv, or to
the configured telemetry directory, and a summary is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetUint64("steps")
			csvPath, _ := cmd.Flags().GetString("csv")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			sim, err := e.load()
			if err != nil {
				return err
			}

			start := time.Now()
			var rec telemetry.Recorder
			rec.Observe(sim)
			for i := uint64(0); i < steps; i++ {
				sim.Step()
				rec.Observe(sim)
			}
			e.log.Info("run finished", "steps", steps, "elapsed", time.Since(start).Round(time.Millisecond))

			if out, err := e.writeTelemetry(csvPath, rec.Rows()); err != nil {
				return err
			} else if out != "" {
				fmt.Fprintf(e.out, "telemetry written to %s\n", out)
			}

			sum := telemetry.Summarize(rec.Rows())
			fmt.Fprintf(e.out, "steps %d..%d: mean population %.2f (sd %.2f), peak %d at step %d, final %d\n",
				rec.Rows()[0].Step, sim.CurrentStep(), sum.MeanPopulation, sum.StdPopulation, sum.Peak, sum.PeakStep, sum.Final)

			if dryRun {
				return nil
			}
			return e.save(sim)
		},
	}
	cmd.Flags().Uint64P("steps", "n", 100, "Number of steps to run")
	cmd.Flags().String("csv", "", "Write per-step rows to this file")
	cmd.Flags().Bool("dry-run", false, "Do not save the advanced board")
	return cmd
}

// writeTelemetry writes rows to path, or into the configured telemetry
// directory when path is empty. It returns "" when neither is set.
func (e *env) writeTelemetry(path string, rows []telemetry.Row) (string, error) {
	if path != "" {
		return telemetry.WriteFile(filepath.Dir(path), filepath.Base(path), rows)
	}
	if e.cfg.Telemetry.Dir == "" {
		return "", nil
	}
	base := strings.TrimSuffix(filepath.Base(e.file), filepath.Ext(e.file))
	name := fmt.Sprintf("%s-%s.csv", base, time.Now().Format("20060102-150405"))
	return telemetry.WriteFile(e.cfg.Telemetry.Dir, name, rows)
}

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Animate the board in the terminal",
		Long: `Runs autoplay and prints each generation. Playback stops after --steps
generations, when reverse playback reaches step 0, or on interrupt. The
board is saved where playback stopped.`,
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

			interval := e.cfg.Autoplay.Interval
			if cmd.Flags().Changed("interval") {
				interval, _ = cmd.Flags().GetDuration("interval")
			}
			reverse := e.cfg.Autoplay.Reverse
			if cmd.Flags().Changed("reverse") {
				reverse, _ = cmd.Flags().GetBool("reverse")
			}
			limit, _ := cmd.Flags().GetUint64("steps")
			redraw, _ := cmd.Flags().GetBool("redraw")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			sess := session.New(sim, e.log, interval)
			sess.SetReverse(reverse)

			var frames uint64
			last := sim.CurrentStep()
			sess.OnChange(func(st session.Status) {
				if st.Step != last {
					last = st.Step
					frames++
					sess.View(func(sim *life.Simulation) { printFrame(e, sim, redraw) })
				}
				if st.Playing && limit > 0 && frames >= limit {
					sess.Pause()
				}
				if !st.Playing {
					cancel()
				}
			})

			printFrame(e, sim, redraw)
			sess.Play()
			if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			sess.Pause()

			var saveErr error
			sess.View(func(sim *life.Simulation) { saveErr = e.save(sim) })
			return saveErr
		},
	}
	cmd.Flags().Duration("interval", 0, "Delay between generations (default from config)")
	cmd.Flags().Bool("reverse", false, "Play backwards, discarding edits on the way")
	cmd.Flags().Uint64P("steps", "n", 0, "Stop after this many generations (0 = until interrupted)")
	cmd.Flags().Bool("redraw", false, "Clear the terminal before each frame")
	return cmd
}

func printFrame(e *env, sim *life.Simulation, redraw bool) {
	if redraw {
		fmt.Fprint(e.out, "\x1b[H\x1b[2J")
	}
	fmt.Fprintf(e.out, "step %d, %d alive\n", sim.CurrentStep(), sim.Population())
	if err := sim.EncodeText(e.out); err != nil {
		e.log.Warn("printing frame failed", "err", err)
	}
}
