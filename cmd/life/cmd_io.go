package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lifetrace/pkg/sims/life"
)

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <out.txt|->",
		Short: "Write the current board as text",
		Long: `Writes the current generation as rows of 'o' and '.' glyphs. Rules, step
and edit history are not part of the text format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			sim, err := e.load()
			if err != nil {
				return err
			}
			if args[0] == "-" {
				return sim.EncodeText(e.out)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("creating %s: %w", args[0], err)
			}
			if err := sim.EncodeText(f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "exported step %d to %s\n", sim.CurrentStep(), args[0])
			return nil
		},
	}
}

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <in.txt|->",
		Short: "Create a board from a text file",
		Long: `Reads rows of 'o' (alive) and any other glyph (dead) into a new board at
step 0 with the default rules. The width is taken from the first row.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(e.file); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", e.file)
			}

			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("opening %s: %w", args[0], err)
				}
				defer f.Close()
				r = f
			}

			sim, err := life.DecodeText(r, e.options()...)
			if err != nil {
				return fmt.Errorf("importing %s: %w", args[0], err)
			}
			if err := e.save(sim); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "imported %s into %s: %s, %d alive\n", args[0], e.file, sim.Settings(), sim.Population())
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite an existing board")
	return cmd
}
