package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cureverse/cureverse/internal/view"
)

func newHistoryCmd(opts *clientOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the persisted transcript",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, backend, err := opts.openTranscript(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			msgs, err := store.LoadAll(ctx)
			if err != nil {
				return err
			}
			if len(msgs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved conversation.")
				return nil
			}
			if limit > 0 && len(msgs) > limit {
				msgs = msgs[len(msgs)-limit:]
			}

			r := opts.renderer()
			for _, msg := range msgs {
				fmt.Fprintln(cmd.OutOrStdout(), view.FormatNode(r.Render(msg)))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "only print the last N messages")
	return cmd
}

func newClearCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the persisted transcript",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, backend, err := opts.openTranscript(ctx)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := store.Clear(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", store.Key())
			return nil
		},
	}
}
