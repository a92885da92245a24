package observability

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/types"
	"github.com/jonathan/cv-studio/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestPrintCVSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	cv := types.EmptyCVData()
	cv.PersonalInfo = &types.PersonalInfo{FullName: "Élodie Martin", Email: "elodie@example.com", Title: "Développeuse"}
	cv.Experiences = []types.ExperienceEntry{{ID: "e1", Role: "Lead Dev", Company: "Acme"}}
	cv.Skills = []string{"Go", "SQL"}

	p.PrintCVSummary(cv, "model6")
	output := buf.String()

	assert.Contains(t, output, "CV SUMMARY")
	assert.Contains(t, output, "Élodie Martin")
	assert.Contains(t, output, "Développeuse")
	assert.Contains(t, output, "model6")
	assert.Contains(t, output, "Lead Dev, Acme")
	assert.Contains(t, output, "Skills:")
}

func TestPrintCVSummary_NoPersonalInfo(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCVSummary(types.EmptyCVData(), "")

	assert.Contains(t, buf.String(), "(not set)")
	assert.NotContains(t, buf.String(), "Template:")
}

func TestPrintCVSummary_ManyExperiences(t *testing.T) {
	var buf bytes.Buffer
	cv := types.EmptyCVData()
	for i := 0; i < 8; i++ {
		cv.Experiences = append(cv.Experiences, types.ExperienceEntry{Role: "Dev", Company: "Co"})
	}

	NewPrinter(&buf).PrintCVSummary(cv, "modern")

	assert.Contains(t, buf.String(), "... and 3 more")
}

func TestPrintValidationReport(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintValidationReport(nil)
		assert.Contains(t, buf.String(), "CV is valid")
	})

	t.Run("field errors", func(t *testing.T) {
		var buf bytes.Buffer
		err := &validation.Errors{Errors: []validation.FieldError{
			{Field: "personalInfo.email", Tag: "email", Message: "Email invalide"},
			{Field: "experiences[0].company", Tag: "required", Message: "L'entreprise est requise"},
		}}
		NewPrinter(&buf).PrintValidationReport(err)

		output := buf.String()
		assert.Contains(t, output, "2 field(s) rejected")
		assert.Contains(t, output, "personalInfo.email")
		assert.Contains(t, output, "experiences[0].company")
	})

	t.Run("other error", func(t *testing.T) {
		var buf bytes.Buffer
		NewPrinter(&buf).PrintValidationReport(errors.New("not json"))
		assert.Contains(t, buf.String(), "not json")
	})
}

func TestPrintTemplates(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintTemplates(rendering.Templates(), "model5")

	output := buf.String()
	assert.Contains(t, output, "TEMPLATES")
	assert.Contains(t, output, "* model5")
	assert.Contains(t, output, "  minimal")
	assert.Contains(t, output, "Tech Minimaliste")
}

func TestPrintExportResult(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExportResult(&capture.Result{
		FileName: "CV_José_Álvarez.pdf",
		PDF:      make([]byte, 3*1024),
		Pages:    2,
		Width:    1588,
		Height:   3000,
	}, "out/CV_José_Álvarez.pdf")

	output := buf.String()
	assert.Contains(t, output, "PDF EXPORT")
	assert.Contains(t, output, "CV_José_Álvarez.pdf")
	assert.Contains(t, output, "Pages:   2")
	assert.Contains(t, output, "1588x3000 px")
	assert.Contains(t, output, "3.0 KiB")
}

func TestPrintExportResult_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintExportResult(nil, "")
	assert.Empty(t, buf.String())
}

func TestPrintPDFReport(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintPDFReport(&validation.PDFReport{
		Pages:     2,
		PageSizes: []validation.PageInfo{{Width: 595, Height: 842}, {Width: 595, Height: 842}},
	})

	output := buf.String()
	assert.Contains(t, output, "Pages:       2")
	assert.Contains(t, output, "A4 portrait")
	assert.Contains(t, output, "Page 2: 595x842 pt")
}

func TestPrintBox_AlignsMultibyteLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", "Expérience Professionnelle\n"+strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), "line %q", line)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ééé...", truncate("éééééééé", 6))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KiB", formatBytes(2048))
	assert.Equal(t, "1.5 MiB", formatBytes(3<<19))
}
