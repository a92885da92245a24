package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/go-pdf/fpdf"
)

// A4 portrait page in millimeters.
const (
	PageWidthMM  = 210.0
	PageHeightMM = 297.0
)

// Raster scale in device pixels per CSS pixel.
const (
	DefaultScale = 2.0
	MinScale     = 2.0
)

// Band is a horizontal slice of the raster that fills one page.
type Band struct {
	Top    int
	Height int
}

// PageBandHeight is the raster height in pixels that fills one A4 page when
// the raster width is mapped onto the page width.
func PageBandHeight(width int) int {
	if width <= 0 {
		return 0
	}
	return int(math.Round(float64(width) * PageHeightMM / PageWidthMM))
}

// PageBands splits a raster of the given size into page bands covering the
// whole height. The last band may be shorter than a page. A raster with no
// height still yields one band so every export has at least one page.
func PageBands(width, height int) []Band {
	bandHeight := PageBandHeight(width)
	if bandHeight <= 0 || height <= 0 {
		return []Band{{Top: 0, Height: max(height, 0)}}
	}
	bands := make([]Band, 0, height/bandHeight+1)
	for top := 0; top < height; top += bandHeight {
		bands = append(bands, Band{Top: top, Height: min(bandHeight, height-top)})
	}
	return bands
}

// AssemblePDF lays a PNG raster onto A4 pages, one band per page, and returns
// the PDF with its page count.
func AssemblePDF(raster []byte) ([]byte, int, error) {
	img, err := png.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode raster: %w", err)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, 0, fmt.Errorf("raster is empty (%dx%d)", width, height)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("cv-studio", true)

	mmPerPixel := PageWidthMM / float64(width)
	for i, band := range PageBands(width, height) {
		page, err := encodeBand(img, band)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode page %d: %w", i+1, err)
		}
		name := fmt.Sprintf("page-%d", i+1)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.AddPage()
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page))
		pdf.ImageOptions(name, 0, 0, PageWidthMM, float64(band.Height)*mmPerPixel, false, opts, 0, "")
		if pdf.Err() {
			return nil, 0, fmt.Errorf("failed to add page %d: %w", i+1, pdf.Error())
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, 0, fmt.Errorf("failed to write pdf: %w", err)
	}
	return out.Bytes(), pdf.PageNo(), nil
}

// encodeBand crops one band onto an opaque white canvas.
func encodeBand(img image.Image, band Band) ([]byte, error) {
	b := img.Bounds()
	src := image.Rect(b.Min.X, b.Min.Y+band.Top, b.Max.X, b.Min.Y+band.Top+band.Height)
	dst := image.NewRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// rasterSize returns the pixel size of a PNG, or zeros if it cannot be read.
func rasterSize(raster []byte) (int, int) {
	cfg, err := png.DecodeConfig(bytes.NewReader(raster))
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
