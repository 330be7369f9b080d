package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"lifetrace/internal/config"
	"lifetrace/internal/logging"
	"lifetrace/internal/store"
	"lifetrace/pkg/sims/life"
)

const defaultFile = "board.gol"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "life",
		Short: "Game of Life boards with a rewindable timeline",
		Long: `life creates, edits and replays Game of Life boards stored as .gol files.

Every edit is recorded against the step it was made at, so a board can be
stepped backwards or sent to any earlier step and replayed forwards again.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("file", "f", defaultFile, "Board file to operate on")
	rootCmd.PersistentFlags().String("config", "", "YAML config file overlaid on the defaults")
	rootCmd.PersistentFlags().StringToString("set", nil, "Override config keys, e.g. --set width=40,min=1")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace")
	rootCmd.PersistentFlags().Bool("no-index", false, "Do not record saves in the save index")

	rootCmd.AddCommand(
		newNewCmd(),
		newToggleCmd(),
		newStepCmd(),
		newBackCmd(),
		newGotoCmd(),
		newClearCmd(),
		newShowCmd(),
		newInfoCmd(),
		newExportCmd(),
		newImportCmd(),
		newRunCmd(),
		newPlayCmd(),
		newSweepCmd(),
		newSavesCmd(),
	)
	return rootCmd
}

// env is the per-invocation state shared by every command.
type env struct {
	cfg     config.Config
	log     *slog.Logger
	file    string
	noIndex bool
	out     io.Writer
}

func newEnv(cmd *cobra.Command) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	sets, _ := cmd.Flags().GetStringToString("set")
	cfg, err = config.FromMap(cfg, sets)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	file, _ := cmd.Flags().GetString("file")
	noIndex, _ := cmd.Flags().GetBool("no-index")
	return &env{
		cfg:     cfg,
		log:     logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		file:    file,
		noIndex: noIndex,
		out:     cmd.OutOrStdout(),
	}, nil
}

func (e *env) options() []life.Option {
	return []life.Option{life.WithCacheWindow(e.cfg.Engine.CacheWindow)}
}

// load reads the board file.
func (e *env) load() (*life.Simulation, error) {
	sim, err := store.ReadBoard(e.file, e.options()...)
	if err != nil {
		return nil, err
	}
	e.log.Debug("board loaded", "file", e.file, "step", sim.CurrentStep(), "population", sim.Population())
	return sim, nil
}

// save writes sim to the board file and records it in the save index.
func (e *env) save(sim *life.Simulation) error {
	size, err := store.WriteBoard(e.file, sim)
	if err != nil {
		return err
	}
	e.log.Debug("board saved", "file", e.file, "step", sim.CurrentStep(), "bytes", size)
	e.record(e.file, sim, size)
	return nil
}

// record adds the save to the index. Index failures are logged, never fatal.
func (e *env) record(path string, sim *life.Simulation, size int64) {
	if e.noIndex {
		return
	}
	dbPath, err := e.cfg.StorePath()
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = store.RecordFile(ctx, dbPath, path, sim, size)
	}
	if err != nil {
		e.log.Warn("recording save failed", "file", path, "err", err)
	}
}

func (e *env) openIndex() (*store.SQLiteIndex, error) {
	path, err := e.cfg.StorePath()
	if err != nil {
		return nil, err
	}
	return store.OpenSQLite(path)
}

// edit loads the board, applies fn and saves the result.
func (e *env) edit(fn func(sim *life.Simulation) error) (*life.Simulation, error) {
	sim, err := e.load()
	if err != nil {
		return nil, err
	}
	if err := fn(sim); err != nil {
		return nil, err
	}
	if err := e.save(sim); err != nil {
		return nil, err
	}
	return sim, nil
}

func (e *env) printStatus(sim *life.Simulation) {
	fmt.Fprintf(e.out, "step %d, %d alive\n", sim.CurrentStep(), sim.Population())
}
