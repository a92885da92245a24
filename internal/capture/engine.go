// Package capture converts the rendered CV region of a live page into a
// paginated A4 PDF.
//
// The pipeline isolates the region from the host page, inlines the effective
// style of every element, rewrites colors the rasterizer cannot parse, renders
// the isolated copy in a sandbox and slices the raster into PDF pages. The
// rendering engine sits behind the Engine, LivePage and Sandbox interfaces so
// that everything but the raster itself can be tested without a browser.
package capture

import "context"

// CaptureIndexAttr tags region elements while their computed styles are read.
const CaptureIndexAttr = "data-cv-capture-idx"

// ExcludeAttr marks elements that must not appear in an export.
const ExcludeAttr = "data-capture-exclude"

// Engine is a rendering engine able to load documents.
type Engine interface {
	// Open loads html as a live page.
	Open(ctx context.Context, html string) (LivePage, error)
	// NewSandbox creates an empty document context that shares nothing with
	// any live page.
	NewSandbox(ctx context.Context) (Sandbox, error)
}

// LivePage is a loaded document holding the region to capture.
type LivePage interface {
	// HasRegion reports whether selector matches an element.
	HasRegion(ctx context.Context, selector string) (bool, error)
	// NeutralizeTransforms clears display-only transforms on the region and
	// its ancestors so measurements reflect the true size.
	NeutralizeTransforms(ctx context.Context, selector string) error
	// CaptureRegion returns the region markup with every element tagged by
	// CaptureIndexAttr and the computed style of each tagged element.
	CaptureRegion(ctx context.Context, selector string) (*Snapshot, error)
	ColorResolver
	Close() error
}

// ColorResolver converts CSS color values to an rgb() or rgba() equivalent.
// Values it cannot resolve are left out of the result.
type ColorResolver interface {
	ResolveColors(ctx context.Context, values []string) (map[string]string, error)
}

// Sandbox is an isolated document that can be rasterized.
type Sandbox interface {
	SetContent(ctx context.Context, html string) error
	// Rasterize renders the whole document at scale device pixels per CSS
	// pixel and returns a PNG.
	Rasterize(ctx context.Context, scale float64) ([]byte, error)
	Close() error
}

// Snapshot is the captured state of a region.
type Snapshot struct {
	// HTML is the outer HTML of the region. Element i carries
	// CaptureIndexAttr="i".
	HTML string `json:"html"`
	// Styles holds the computed style of element i, property to value.
	Styles []map[string]string `json:"styles"`
	Width  float64             `json:"width"`
	Height float64             `json:"height"`
}
