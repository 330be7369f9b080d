package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSavesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "List boards recorded in the save index",
		Long: `Every save made by this tool is recorded in a small SQLite index
(store.path in the config). saves lists the most recent first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			idx, err := e.openIndex()
			if err != nil {
				return fmt.Errorf("opening save index: %w", err)
			}
			defer idx.Close()

			entries, err := idx.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(e.out, "No saves recorded.")
				return nil
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PATH\tBOARD\tRULE\tSTEP\tALIVE\tEDITS\tSIZE\tSAVED")
			for _, s := range entries {
				topology := "torus"
				if !s.Toroidal {
					topology = "bounded"
				}
				fmt.Fprintf(tw, "%s\t%dx%d %s\t%s\t%d\t%s\t%d\t%s\t%s\n",
					s.Path, s.Width, s.Height, topology, s.Rule, s.Step,
					humanize.Comma(int64(s.Population)), s.Edits,
					humanize.Bytes(uint64(s.Bytes)), humanize.Time(s.SavedAt))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(newSavesForgetCmd(), newSavesPruneCmd())
	return cmd
}

func newSavesForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <path>...",
		Short: "Remove boards from the index (files are kept)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			idx, err := e.openIndex()
			if err != nil {
				return fmt.Errorf("opening save index: %w", err)
			}
			defer idx.Close()

			for _, path := range args {
				abs, err := filepath.Abs(path)
				if err != nil {
					abs = path
				}
				found, err := idx.Forget(cmd.Context(), abs)
				if err != nil {
					return err
				}
				if !found {
					fmt.Fprintf(e.out, "%s: not in index\n", abs)
					continue
				}
				fmt.Fprintf(e.out, "forgot %s\n", abs)
			}
			return nil
		},
	}
}

func newSavesPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop index entries whose files no longer exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(cmd)
			if err != nil {
				return err
			}
			idx, err := e.openIndex()
			if err != nil {
				return fmt.Errorf("opening save index: %w", err)
			}
			defer idx.Close()

			gone, err := idx.Prune(cmd.Context())
			if err != nil {
				return err
			}
			for _, path := range gone {
				fmt.Fprintf(e.out, "pruned %s\n", path)
			}
			fmt.Fprintf(e.out, "%d %s pruned\n", len(gone), pluralize(len(gone), "entry", "entries"))
			return nil
		},
	}
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
