package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/rendering"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a CV as a paginated A4 PDF",
	Long: `Render the CV in a headless browser, capture the CV region and write it as
an A4 PDF named after the CV owner. Requires Chrome (see CHROME_PATH).`,
	RunE: runExport,
}

var (
	exportInput    string
	exportTemplate string
	exportOutDir   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "in", "i", "", "Path to a CV JSON document (default: saved session)")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template key (default: the selected template)")
	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", "", "Output directory (default from config)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := loadState(ctx, exportInput)
	if err != nil {
		return err
	}
	if exportTemplate != "" {
		if !rendering.Has(exportTemplate) {
			return fmt.Errorf("unknown template %q", exportTemplate)
		}
		state.Templates.SelectedTemplate = exportTemplate
	}

	html, err := rendering.PreviewPage(state.CV, state.Templates, rendering.PreviewOptions{})
	if err != nil {
		return err
	}

	engine, err := capture.NewChromeEngine(ctx, capture.ChromeOptions{
		ExecPath: settings.ChromePath,
		Logger:   observability.Component(logger, "capture"),
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	var fullName string
	if state.CV.PersonalInfo != nil {
		fullName = state.CV.PersonalInfo.FullName
	}
	res, err := newExporter(engine).Export(ctx, capture.Request{HTML: html, FullName: fullName})
	if err != nil {
		return err
	}

	dir := exportOutDir
	if dir == "" {
		dir = settings.OutputDir
	}
	path := filepath.Join(dir, res.FileName)
	if err := writeFile(path, res.PDF); err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintExportResult(res, path)
	return nil
}
