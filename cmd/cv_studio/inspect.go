package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/validation"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.pdf>",
	Short: "Report the pages of an exported PDF",
	Long: `Report the page count and page sizes of a PDF. With --thumbnails the first
pages are also rendered as JPEG images.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

var (
	inspectThumbDir  string
	inspectMaxThumbs int
)

func init() {
	inspectCmd.Flags().StringVar(&inspectThumbDir, "thumbnails", "", "Directory for page thumbnails")
	inspectCmd.Flags().IntVar(&inspectMaxThumbs, "max-pages", 3, "Number of pages to render as thumbnails (0 for all)")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	report, err := validation.InspectPDF(data)
	if err != nil {
		// Page sizes need the PDF engine; pdfinfo still gives the count.
		pages, countErr := validation.CountPDFPages(path)
		if countErr != nil {
			return err
		}
		logger.Warn("pdf engine unavailable, reporting page count only", "error", err)
		report = &validation.PDFReport{Pages: pages}
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintPDFReport(report)

	if inspectThumbDir == "" {
		return nil
	}
	images, err := validation.RenderThumbnails(data, inspectMaxThumbs)
	if err != nil {
		return err
	}
	for i, img := range images {
		out := filepath.Join(inspectThumbDir, fmt.Sprintf("page-%d.jpg", i+1))
		if err := writeFile(out, img); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}
