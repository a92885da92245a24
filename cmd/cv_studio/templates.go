package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/rendering"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the CV templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		selected := settings.Template
		if sess, err := openSession(cmd.Context()); err == nil {
			selected = sess.store.SelectedTemplate()
			_ = sess.Close()
		}
		observability.NewPrinter(cmd.OutOrStdout()).PrintTemplates(rendering.Templates(), selected)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}
