package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/vidyasagar/tabnav/internal/storage"
	"github.com/vidyasagar/tabnav/internal/tabhistory"
)

func newHistoryCmd(opts *options) *cobra.Command {
	history := &cobra.Command{
		Use:   "history",
		Short: "Prints the saved tab history",
		Long: `Prints the tab history saved by the last tabnav session, oldest
first. The entry marked with ">" is the current position.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}
	history.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empties the saved tab history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistoryClear(cmd, opts)
		},
	})
	return history
}

func openStore(cmd *cobra.Command, opts *options) (tabhistory.Store, io.Closer, *storage.Config, error) {
	cfg, err := loadConfig(cmd.Flags(), opts)
	if err != nil {
		return nil, nil, nil, err
	}
	dir, err := dataDir(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	store, closer, err := storage.OpenHistoryStore(cfg.Store, dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	return store, closer, cfg, nil
}

func runHistory(cmd *cobra.Command, opts *options) error {
	store, closer, cfg, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	st, ok, err := store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("loading tab history: %w", err)
	}
	out := cmd.OutOrStdout()
	if !ok || len(st.Entries) == 0 {
		fmt.Fprintln(out, "No saved tab history.")
		return nil
	}

	// Show what a session would restore from, not the raw rows.
	stack := tabhistory.NewStack(cfg.HistoryLimit)
	stack.Load(st)
	st = stack.State()

	for i, id := range st.Entries {
		marker := " "
		if i == st.Cursor {
			marker = ">"
		}
		fmt.Fprintf(out, "%s %2d  tab %d\n", marker, i+1, id)
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, opts *options) error {
	store, closer, _, err := openStore(cmd, opts)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := store.Save(cmd.Context(), tabhistory.State{Cursor: -1}); err != nil {
		return fmt.Errorf("clearing tab history: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Tab history cleared.")
	return nil
}
