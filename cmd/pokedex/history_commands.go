package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pokedex/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded identifications",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var unresolved bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent identifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			if limit < 0 {
				return fmt.Errorf("--limit must be zero or positive")
			}
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), history.ListOptions{Limit: limit, UnresolvedOnly: unresolved})
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if jsonOutput {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No recorded identifications")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					formatTime(entry.CreatedAt),
					entry.Image,
					rawLabelText(entry.RawLabel),
					entry.Name,
					yesNo(entry.Resolved),
					entry.Error,
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Time", "Image", "Label", "Name", "Resolved", "Error"},
				rows,
				nil,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "Only show labels that matched no catalog record")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	return cmd
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded identifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			store, err := ctx.requireHistory()
			if err != nil {
				return err
			}
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d history entries\n", removed)
			return nil
		},
	}
}

func rawLabelText(label *string) string {
	if label == nil {
		return "(none)"
	}
	return *label
}
