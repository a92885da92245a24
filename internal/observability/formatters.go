// Package observability provides logging setup and formatted output
// utilities for the CLI.
package observability

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/types"
	"github.com/jonathan/cv-studio/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad right-pads s with spaces to n runes; %-*s counts bytes.
func pad(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}

// PrintCVSummary outputs a human-readable summary of a CV.
func (p *Printer) PrintCVSummary(cv types.CVData, template string) {
	var sb strings.Builder

	if cv.PersonalInfo != nil {
		sb.WriteString(fmt.Sprintf("Name:      %s\n", cv.PersonalInfo.FullName))
		if cv.PersonalInfo.Title != "" {
			sb.WriteString(fmt.Sprintf("Title:     %s\n", cv.PersonalInfo.Title))
		}
		sb.WriteString(fmt.Sprintf("Email:     %s\n", cv.PersonalInfo.Email))
	} else {
		sb.WriteString("Name:      (not set)\n")
	}
	if template != "" {
		sb.WriteString(fmt.Sprintf("Template:  %s\n", template))
	}
	sb.WriteString("\n")

	counts := []struct {
		label string
		n     int
	}{
		{"Experiences", len(cv.Experiences)},
		{"Education", len(cv.Education)},
		{"Projects", len(cv.Projects)},
		{"Skills", len(cv.Skills)},
		{"Skill categories", len(cv.SkillCategories)},
		{"Languages", len(cv.Languages)},
		{"Certifications", len(cv.Certifications)},
		{"Interests", len(cv.Interests)},
	}
	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("%-18s %d\n", c.label+":", c.n))
	}

	if len(cv.Experiences) > 0 {
		sb.WriteString("\nExperiences:\n")
		count := min(len(cv.Experiences), maxItemsToShow)
		for i := 0; i < count; i++ {
			exp := cv.Experiences[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s\n", exp.Role, exp.Company))
		}
		if len(cv.Experiences) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cv.Experiences)-maxItemsToShow))
		}
	}

	p.printBox("CV SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintValidationReport outputs the outcome of validating a CV. err is the
// result of the schema and field checks; nil means the CV is valid.
func (p *Printer) PrintValidationReport(err error) {
	if err == nil {
		p.printBox("VALIDATION", "✓ CV is valid")
		return
	}

	var sb strings.Builder
	var fieldErrs *validation.Errors
	if errors.As(err, &fieldErrs) {
		sb.WriteString(fmt.Sprintf("✗ %d field(s) rejected:\n\n", len(fieldErrs.Errors)))
		for _, fe := range fieldErrs.Errors {
			sb.WriteString(fmt.Sprintf("  • %s\n    %s\n", fe.Field, fe.Message))
		}
	} else {
		sb.WriteString("✗ " + err.Error())
	}

	p.printBox("VALIDATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTemplates outputs the template catalog, marking the selected one.
func (p *Printer) PrintTemplates(templates []rendering.Template, selected string) {
	var sb strings.Builder
	for i, t := range templates {
		marker := " "
		if t.Key == selected {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf("%s %-9s %s\n", marker, t.Key, t.Name))
		sb.WriteString(fmt.Sprintf("            %s, %s\n", t.Layout, t.SkillSource))
		if i < len(templates)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("TEMPLATES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExportResult outputs the summary of a finished export.
func (p *Printer) PrintExportResult(res *capture.Result, path string) {
	if res == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:    %s\n", res.FileName))
	if path != "" {
		sb.WriteString(fmt.Sprintf("Path:    %s\n", path))
	}
	sb.WriteString(fmt.Sprintf("Pages:   %d\n", res.Pages))
	sb.WriteString(fmt.Sprintf("Raster:  %dx%d px\n", res.Width, res.Height))
	sb.WriteString(fmt.Sprintf("Size:    %s", formatBytes(len(res.PDF))))

	p.printBox("PDF EXPORT", sb.String())
}

// PrintPDFReport outputs the page count and page sizes of a PDF.
func (p *Printer) PrintPDFReport(report *validation.PDFReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages:       %d\n", report.Pages))
	if report.A4Portrait() {
		sb.WriteString("Format:      A4 portrait\n")
	} else {
		sb.WriteString("Format:      not A4 portrait\n")
	}

	count := min(len(report.PageSizes), maxItemsToShow)
	for i := 0; i < count; i++ {
		size := report.PageSizes[i]
		sb.WriteString(fmt.Sprintf("  Page %d: %dx%d pt\n", i+1, size.Width, size.Height))
	}
	if len(report.PageSizes) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.PageSizes)-maxItemsToShow))
	}

	p.printBox("PDF REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
