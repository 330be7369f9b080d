//go:build ebiten

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"lifetrace/internal/app"
	"lifetrace/internal/logging"
	"lifetrace/internal/session"
	"lifetrace/internal/store"
	"lifetrace/pkg/core"
	"lifetrace/pkg/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := app.NewFlags()
	flags.Bind(flag.CommandLine)
	flag.Parse()

	cfg, err := flags.Resolve()
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
	opts := []life.Option{life.WithCacheWindow(cfg.Engine.CacheWindow)}

	var sim *life.Simulation
	if flags.File != "" {
		sim, err = store.ReadBoard(flags.File, opts...)
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("board file does not exist yet; starting a new board", "file", flags.File)
			err = nil
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	if sim == nil {
		if sim, err = life.New(cfg.Settings(), opts...); err != nil {
			log.Fatal(err)
		}
		if flags.Density > 0 {
			sim.Scatter(core.NewRNG(flags.Seed), flags.Density)
		}
	}

	sess := session.New(sim, logger, cfg.Autoplay.Interval)
	sess.SetReverse(cfg.Autoplay.Reverse)

	var save app.SaveFunc
	if flags.File != "" {
		save = func(sim *life.Simulation, format store.Format) error {
			if format == store.Text {
				path := store.TextPath(flags.File)
				if _, err := store.WriteBoardAs(path, sim, store.Text); err != nil {
					return err
				}
				logger.Info("board saved", "file", path, "format", format)
				return nil
			}
			size, err := store.WriteBoard(flags.File, sim)
			if err != nil {
				return err
			}
			logger.Info("board saved", "file", flags.File, "step", sim.CurrentStep())
			dbPath, err := cfg.StorePath()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.RecordFile(ctx, dbPath, flags.File, sim, size)
		}
	}

	game := app.New(sess, logger, save, cfg.Viewer.Scale)

	ebiten.SetWindowTitle("lifetrace: " + sim.Settings().String())
	ebiten.SetTPS(cfg.Viewer.TPS)
	ebiten.SetWindowSize(game.WindowSize())

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
