package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pokedex/internal/identify"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Classify an image and show the matching catalog entry",
		Long: `Upload an image to the classifier service and resolve the predicted label
against the species catalog.

Examples:
  pokedex identify pikachu.png
  pokedex identify --json photo.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			outcome, err := svc.IdentifyFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("identify %s: %w", args[0], err)
			}
			return printOutcome(cmd, outcome, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <label>",
		Short: "Resolve a classifier label against the catalog",
		Long: `Resolve a label exactly as if the classifier had returned it. Matching is
case-insensitive; a label with a form suffix such as "charizard-gmax" falls
back to the first catalog entry sharing its base name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			svc, err := ctx.ensureService()
			if err != nil {
				return err
			}
			outcome, err := svc.ResolveLabel(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve %q: %w", args[0], err)
			}
			return printOutcome(cmd, outcome, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printOutcome(cmd *cobra.Command, outcome identify.Outcome, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, outcome)
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, renderOutcome(outcome, shouldColorize(out)))
	if !outcome.Payload.Resolved && strings.TrimSpace(outcome.RawLabel) != "" {
		fmt.Fprintf(out, "No catalog entry matches %q\n", outcome.RawLabel)
	}
	return nil
}
