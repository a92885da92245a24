package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/store"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a CV as a standalone HTML page",
	Long: `Render the saved CV, or the CV document given with --in, as a standalone
HTML page. With --all every template is rendered into --out-dir.`,
	RunE: runRender,
}

var (
	renderInput    string
	renderTemplate string
	renderOutput   string
	renderAll      bool
	renderOutDir   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to a CV JSON document (default: saved session)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template key (default: the selected template)")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output HTML file (default: stdout)")
	renderCmd.Flags().BoolVar(&renderAll, "all", false, "Render every template")
	renderCmd.Flags().StringVar(&renderOutDir, "out-dir", "", "Output directory for --all (default from config)")
	renderCmd.MarkFlagsMutuallyExclusive("all", "template")
	renderCmd.MarkFlagsMutuallyExclusive("all", "out")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	state, err := loadState(ctx, renderInput)
	if err != nil {
		return err
	}

	if renderAll {
		dir := renderOutDir
		if dir == "" {
			dir = settings.OutputDir
		}
		paths, err := renderAllTemplates(ctx, state, dir)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	}

	if renderTemplate != "" {
		if !rendering.Has(renderTemplate) {
			return fmt.Errorf("unknown template %q", renderTemplate)
		}
		state.Templates.SelectedTemplate = renderTemplate
	}
	html, err := rendering.Document(state.CV, state.Templates)
	if err != nil {
		return err
	}

	if renderOutput == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), html)
		return err
	}
	if err := writeFile(renderOutput, []byte(html)); err != nil {
		return err
	}
	logger.Info("rendered cv", "template", state.Templates.SelectedTemplate, "path", renderOutput)
	return nil
}

// renderAllTemplates writes <key>.html for every template into dir and
// returns the paths in catalog order.
func renderAllTemplates(ctx context.Context, state store.State, dir string) ([]string, error) {
	templates := rendering.Templates()
	paths := make([]string, len(templates))

	g, _ := errgroup.WithContext(ctx)
	for i, tmpl := range templates {
		g.Go(func() error {
			ts := state.Templates.Clone()
			ts.SelectedTemplate = tmpl.Key
			html, err := rendering.Document(state.CV, ts)
			if err != nil {
				return fmt.Errorf("template %s: %w", tmpl.Key, err)
			}
			path := filepath.Join(dir, tmpl.Key+".html")
			if err := writeFile(path, []byte(html)); err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// writeFile writes data to path, creating the parent directory.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
