package validation

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// PageInfo is the size of one PDF page in points.
type PageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PDFReport summarizes an exported document.
type PDFReport struct {
	Pages     int        `json:"pages"`
	PageSizes []PageInfo `json:"pageSizes,omitempty"`
}

// A4Portrait reports whether every page has the A4 portrait aspect ratio
// (210x297), within one point of rounding.
func (r *PDFReport) A4Portrait() bool {
	if len(r.PageSizes) == 0 {
		return false
	}
	for _, p := range r.PageSizes {
		want := float64(p.Width) * 297 / 210
		if diff := float64(p.Height) - want; diff > 1.5 || diff < -1.5 {
			return false
		}
	}
	return true
}

// CountPDFPages counts the number of pages in a PDF file
// It tries the embedded MuPDF renderer first, then falls back to pdfinfo
func CountPDFPages(pdfPath string) (int, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return 0, &FileReadError{Message: fmt.Sprintf("failed to read %s", pdfPath), Cause: err}
	}
	if report, err := InspectPDF(data); err == nil {
		return report.Pages, nil
	}

	// Fallback to pdfinfo (poppler-utils)
	if count, err := countPagesWithPdfinfo(pdfPath); err == nil {
		return count, nil
	}

	return 0, &Error{
		Message: "failed to count PDF pages: neither MuPDF nor pdfinfo could read the file",
	}
}

// InspectPDF opens an in-memory PDF and reports its page count and sizes.
func InspectPDF(data []byte) (*PDFReport, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &Error{Message: "failed to open PDF", Cause: err}
	}
	defer doc.Close()

	report := &PDFReport{Pages: doc.NumPage()}
	for i := 0; i < report.Pages; i++ {
		bound, err := doc.Bound(i)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to read page %d bounds", i), Cause: err}
		}
		report.PageSizes = append(report.PageSizes, PageInfo{Width: bound.Dx(), Height: bound.Dy()})
	}
	return report, nil
}

// RenderThumbnails renders up to maxPages pages as JPEG images.
func RenderThumbnails(data []byte, maxPages int) ([][]byte, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &Error{Message: "failed to open PDF", Cause: err}
	}
	defer doc.Close()

	count := doc.NumPage()
	if maxPages > 0 && maxPages < count {
		count = maxPages
	}
	images := make([][]byte, 0, count)
	for i := 0; i < count; i++ {
		img, err := doc.Image(i)
		if err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to render page %d", i), Cause: err}
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, &Error{Message: fmt.Sprintf("failed to encode page %d", i), Cause: err}
		}
		images = append(images, buf.Bytes())
	}
	return images, nil
}

// countPagesWithPdfinfo uses pdfinfo to count PDF pages
func countPagesWithPdfinfo(pdfPath string) (int, error) {
	cmd := exec.Command("pdfinfo", pdfPath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("pdfinfo command failed: %w", err)
	}

	return parsePdfinfoPages(string(output))
}

func parsePdfinfoPages(output string) (int, error) {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "Pages:") {
			parts := strings.Fields(line)
			if len(parts) >= 2 {
				if count, err := strconv.Atoi(parts[1]); err == nil {
					return count, nil
				}
			}
		}
	}
	return 0, fmt.Errorf("could not parse page count from pdfinfo output")
}
