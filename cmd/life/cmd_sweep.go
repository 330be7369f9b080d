package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"lifetrace/internal/telemetry"
	"lifetrace/pkg/core"
	"lifetrace/pkg/sims/life"
)

type ruleSet struct {
	min, max, needed int
}

func (r ruleSet) String() string {
	return fmt.Sprintf("survive %d-%d birth %d", r.min, r.max, r.needed)
}

type sweepResult struct {
	Rule      string  `csv:"rule"`
	Min       int     `csv:"min"`
	Max       int     `csv:"max"`
	Needed    int     `csv:"needed"`
	Initial   int     `csv:"initial"`
	Final     int     `csv:"final"`
	Peak      int     `csv:"peak"`
	Mean      float64 `csv:"mean"`
	StdDev    float64 `csv:"stddev"`
	ExtinctAt int64   `csv:"extinct_at"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Compare rule variants on the same random board",
		Long: `Runs every combination of survival and birth thresholds in the given
ranges from one seeded random board and ranks them by population.

Ranges are written as a single value (3) or an inclusive span (1-4).
Rule combinations with max < min are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			steps, _ := cmd.Flags().GetInt("steps")
			workers, _ := cmd.Flags().GetInt("workers")
			density, _ := cmd.Flags().GetFloat64("density")
			seed, _ := cmd.Flags().GetInt64("seed")
			top, _ := cmd.Flags().GetInt("top")
			sortBy, _ := cmd.Flags().GetString("sort")
			csvPath, _ := cmd.Flags().GetString("csv")

			var ranges [3][2]int
			for i, name := range []string{"min", "max", "needed"} {
				raw, _ := cmd.Flags().GetString(name)
				lo, hi, err := parseRange(raw)
				if err != nil {
					return fmt.Errorf("--%s: %w", name, err)
				}
				ranges[i] = [2]int{lo, hi}
			}
			less, ok := sweepOrders[sortBy]
			if !ok {
				return fmt.Errorf("unknown sort %q (final, mean, peak, stddev)", sortBy)
			}
			if workers < 1 {
				workers = 1
			}

			base := e.cfg.Settings()
			var sets []ruleSet
			for mn := ranges[0][0]; mn <= ranges[0][1]; mn++ {
				for mx := max(mn, ranges[1][0]); mx <= ranges[1][1]; mx++ {
					for nd := ranges[2][0]; nd <= ranges[2][1]; nd++ {
						s := base
						s.MinNeighbors, s.MaxNeighbors, s.NeededNeighbors = mn, mx, nd
						if s.Validate() != nil {
							continue
						}
						sets = append(sets, ruleSet{min: mn, max: mx, needed: nd})
					}
				}
			}
			if len(sets) == 0 {
				return fmt.Errorf("no valid rule combinations in the given ranges")
			}

			fmt.Fprintf(e.out, "Sweeping %d rule sets on %dx%d (%d workers, %d steps, density %.2f, seed %d)\n",
				len(sets), base.Width, base.Height, workers, steps, density, seed)

			start := time.Now()
			all := runSweep(base, sets, steps, workers, density, seed)
			sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
			elapsed := time.Since(start)

			fmt.Fprintf(e.out, "\nTop %d results (elapsed %s):\n", min(top, len(all)), elapsed.Round(time.Millisecond))
			for i := 0; i < len(all) && i < top; i++ {
				res := all[i]
				extinct := "-"
				if res.ExtinctAt >= 0 {
					extinct = strconv.FormatInt(res.ExtinctAt, 10)
				}
				fmt.Fprintf(e.out, "%2d) %-8s final=%d peak=%d mean=%.2f sd=%.2f extinct=%s (%s)\n",
					i+1, res.Rule, res.Final, res.Peak, res.Mean, res.StdDev, extinct,
					ruleSet{min: res.Min, max: res.Max, needed: res.Needed})
			}

			if csvPath == "" {
				return nil
			}
			f, err := os.Create(csvPath)
			if err != nil {
				return fmt.Errorf("creating %s: %w", csvPath, err)
			}
			if err := writeSweepCSV(f, all); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().Int("steps", 200, "Generations to simulate per rule set")
	cmd.Flags().Int("workers", runtime.NumCPU(), "Number of worker goroutines")
	cmd.Flags().Float64("density", 0.3, "Fraction of cells alive on the starting board")
	cmd.Flags().Int64("seed", 1337, "Seed of the starting board")
	cmd.Flags().String("min", "1-4", "Range of minimum neighbors to survive")
	cmd.Flags().String("max", "2-5", "Range of maximum neighbors to survive")
	cmd.Flags().String("needed", "2-4", "Range of neighbors needed for birth")
	cmd.Flags().Int("top", 10, "Number of results to print")
	cmd.Flags().String("sort", "mean", "Rank by final, mean, peak or stddev")
	cmd.Flags().String("csv", "", "Write every result to this CSV file")
	return cmd
}

var sweepOrders = map[string]func(a, b sweepResult) bool{
	"final":  func(a, b sweepResult) bool { return a.Final > b.Final || (a.Final == b.Final && a.Rule < b.Rule) },
	"mean":   func(a, b sweepResult) bool { return a.Mean > b.Mean || (a.Mean == b.Mean && a.Rule < b.Rule) },
	"peak":   func(a, b sweepResult) bool { return a.Peak > b.Peak || (a.Peak == b.Peak && a.Rule < b.Rule) },
	"stddev": func(a, b sweepResult) bool { return a.StdDev > b.StdDev || (a.StdDev == b.StdDev && a.Rule < b.Rule) },
}

// runSweep simulates every rule set on a pool of workers.
func runSweep(base life.Settings, sets []ruleSet, steps, workers int, density float64, seed int64) []sweepResult {
	jobs := make(chan ruleSet)
	results := make(chan sweepResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rules := range jobs {
				results <- runRuleSet(base, rules, steps, density, seed)
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		for _, rules := range sets {
			jobs <- rules
		}
		close(jobs)
	}()

	all := make([]sweepResult, 0, len(sets))
	for res := range results {
		all = append(all, res)
	}
	return all
}

func runRuleSet(base life.Settings, rules ruleSet, steps int, density float64, seed int64) sweepResult {
	settings := base
	settings.MinNeighbors = rules.min
	settings.MaxNeighbors = rules.max
	settings.NeededNeighbors = rules.needed

	res := sweepResult{
		Rule:      settings.Rule(),
		Min:       rules.min,
		Max:       rules.max,
		Needed:    rules.needed,
		ExtinctAt: -1,
	}
	sim, err := life.New(settings, life.WithCacheWindow(0))
	if err != nil {
		return res
	}
	sim.Scatter(core.NewRNG(seed), density)
	res.Initial = sim.Population()

	var rec telemetry.Recorder
	rec.Observe(sim)
	for i := 0; i < steps; i++ {
		sim.Step()
		rec.Observe(sim)
		if sim.Population() == 0 {
			res.ExtinctAt = int64(sim.CurrentStep())
			break
		}
	}

	sum := telemetry.Summarize(rec.Rows())
	res.Final = sum.Final
	res.Peak = sum.Peak
	res.Mean = sum.MeanPopulation
	res.StdDev = sum.StdPopulation
	return res
}

func writeSweepCSV(w io.Writer, results []sweepResult) error {
	if err := gocsv.Marshal(&results, w); err != nil {
		return fmt.Errorf("writing sweep results: %w", err)
	}
	return nil
}

// parseRange reads "n" or "lo-hi".
func parseRange(s string) (int, int, error) {
	los, his, found := strings.Cut(strings.TrimSpace(s), "-")
	lo, err := strconv.Atoi(los)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	if !found {
		return lo, lo, nil
	}
	hi, err := strconv.Atoi(his)
	if err != nil || hi < lo {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	return lo, hi, nil
}
