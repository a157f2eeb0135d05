// Package main provides the CLI for validating world pack files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/questlabs/roomquest/internal/catalog"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "packlint",
		Short:         "Validate and inspect world pack files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newShowCmd())

	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pack.toml>",
		Short: "Check a world pack for problems",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidateCmd,
	}
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	pack, err := catalog.ReadPack(args[0])
	if err != nil {
		return fmt.Errorf("failed to read pack: %w", err)
	}

	rooms, questions, achievements := pack.Content()
	problems := catalog.Problems(rooms, questions, achievements)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(cmd.ErrOrStderr(), p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	}

	fmt.Fprintln(cmd.OutOrStdout(), "ok")
	return nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <pack.toml>",
		Short: "Print a summary of a world pack",
		Args:  cobra.ExactArgs(1),
		RunE:  runShowCmd,
	}
}

func runShowCmd(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadPack(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "rooms:        %d (start: %s)\n", cat.RoomCount(), cat.StartRoom().ID)
	fmt.Fprintf(out, "questions:    %d\n", cat.QuestionCount())
	for _, c := range cat.Categories() {
		fmt.Fprintf(out, "  %-12s %d\n", c, len(cat.QuestionIDs(c)))
	}
	fmt.Fprintf(out, "achievements: %d\n", len(cat.Achievements()))
	return nil
}
