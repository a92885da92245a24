package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/observability"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset the saved session",
}

var stateJSON bool

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved CV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		state := sess.store.State()
		if stateJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}
		if !sess.report.FromStorage {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved session, showing defaults.")
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintCVSummary(state.CV, state.Templates.SelectedTemplate)
		return nil
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Replace the saved CV with the illustrative example",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.store.ResetToDefaults()
		if err := sess.save(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session reset to the example CV.")
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty every section of the saved CV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		sess.store.ResetToEmpty()
		if err := sess.save(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
		return nil
	},
}

func init() {
	stateShowCmd.Flags().BoolVar(&stateJSON, "json", false, "Print the saved envelope as JSON")
	stateCmd.AddCommand(stateShowCmd, stateResetCmd, stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
