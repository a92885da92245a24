package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a CV document",
	Long: `Check a CV JSON document against the document schema and the field rules
of the editor forms. Exits non-zero when the document is rejected.`,
	RunE: runValidate,
}

var validateInput string

// errInvalidCV is returned after the report of a rejected CV was printed.
var errInvalidCV = errors.New("cv is not valid")

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "in", "i", "", "Path to a CV JSON document (required)")
	if err := validateCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	printer := observability.NewPrinter(cmd.OutOrStdout())

	state, err := readDocument(validateInput)
	if err != nil {
		printer.PrintValidationReport(err)
		return errInvalidCV
	}

	err = validation.ValidateCV(state.CV)
	printer.PrintValidationReport(err)
	if err != nil {
		return errInvalidCV
	}
	return nil
}
