package main

import (
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"pokedex/internal/catalog"
)

const defaultCatalogListLimit = 50

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and refresh the species catalog",
	}
	catalogCmd.AddCommand(newCatalogShowCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogRefreshCommand(ctx))
	return catalogCmd
}

func newCatalogShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Load the catalog and show where it came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if _, err := store.Current(cmd.Context()); err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			status, _ := store.Status()
			if jsonOutput {
				return writeJSON(cmd, status)
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, renderKeyValues("Catalog", [][2]string{
				{"Path", status.Path},
				{"Source", status.Source},
				{"Records", fmt.Sprintf("%d", status.Records)},
				{"Skipped", fmt.Sprintf("%d", status.Skipped)},
				{"Modified", formatAge(status.ModTime)},
				{"Loaded", formatAge(status.LoadedAt)},
			}, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var search string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog records",
		Long: `List catalog records in document order. --search matches a case-insensitive
substring of the identifier, name, or alternate name, or an exact index number.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be zero or positive")
			}
			store, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			idx, err := store.Current(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}

			var seq iter.Seq[catalog.Record]
			if strings.TrimSpace(search) != "" {
				seq = idx.Search(search)
			} else {
				seq = idx.Records()
			}
			records := collect(seq, limit)

			if jsonOutput {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No matching records")
				return nil
			}
			colorize := shouldColorize(out)
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.Number,
					rec.ID,
					rec.Name,
					rec.AltName,
					rec.Generation,
					renderTypes(rec.Types, colorize),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"#", "ID", "Name", "Alt name", "Generation", "Types"},
				rows,
				[]columnAlignment{alignRight},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter records by name, identifier, or number")
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultCatalogListLimit, "Maximum records to show (0 for all)")
	return cmd
}

func newCatalogRefreshCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Download the catalog from catalog.download_url and reload it",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureCatalog()
			if err != nil {
				return err
			}
			if err := store.Refresh(cmd.Context()); err != nil {
				return fmt.Errorf("refresh catalog: %w", err)
			}
			idx, err := store.Load(cmd.Context())
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog refreshed: %d records\n", idx.Len())
			return nil
		},
	}
}

func collect(seq iter.Seq[catalog.Record], limit int) []catalog.Record {
	records := make([]catalog.Record, 0)
	for rec := range seq {
		if limit > 0 && len(records) >= limit {
			break
		}
		records = append(records, rec)
	}
	return records
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s (%s)", formatTime(t), humanize.Time(t))
}
