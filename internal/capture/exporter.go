package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/cv-studio/internal/rendering"
)

// Button labels reported by Status.
const (
	LabelIdle       = "Télécharger le PDF"
	LabelGenerating = "Génération en cours..."
)

// DefaultUserMessage is shown when an export fails.
const DefaultUserMessage = "Erreur lors de la génération du PDF"

var (
	// ErrExportInProgress is returned when an export is requested while
	// another one is still running.
	ErrExportInProgress = errors.New("export already in progress")
	// ErrRegionNotFound is returned when the document has no CV region.
	ErrRegionNotFound = errors.New("cv region not found")
)

// Export stages, reported in ExportError.
const (
	StageOpen      = "open"
	StageLocate    = "locate"
	StageCapture   = "capture"
	StageIsolate   = "isolate"
	StageRasterize = "rasterize"
	StageAssemble  = "assemble"
)

// ExportError represents a failed export attempt
type ExportError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error (%s): %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("export error (%s): %s", e.Stage, e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the short message shown to the user.
func (e *ExportError) UserMessage() string {
	return DefaultUserMessage
}

// Request describes one export.
type Request struct {
	// HTML is the document holding the CV region.
	HTML string
	// FullName names the output file.
	FullName string
	// Selector locates the region. Empty means the rendering region id.
	Selector string
}

// Result is a finished export.
type Result struct {
	FileName string
	PDF      []byte
	Pages    int
	// Width and Height are the raster size in pixels.
	Width  int
	Height int
}

// Status is the observable state of an Exporter.
type Status struct {
	Generating bool   `json:"generating"`
	Label      string `json:"label"`
	LastError  string `json:"lastError,omitempty"`
}

// Exporter runs the capture pipeline. At most one export runs at a time.
type Exporter struct {
	engine  Engine
	scale   float64
	timeout time.Duration
	logger  *slog.Logger

	generating atomic.Bool

	mu      sync.Mutex
	lastErr string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithScale sets the raster scale. Values below MinScale are raised to it.
func WithScale(scale float64) Option {
	return func(e *Exporter) {
		e.scale = max(scale, MinScale)
	}
}

// WithTimeout bounds each export. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Exporter) {
		e.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an Exporter on top of engine.
func NewExporter(engine Engine, opts ...Option) *Exporter {
	e := &Exporter{
		engine: engine,
		scale:  DefaultScale,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generating reports whether an export is running.
func (e *Exporter) Generating() bool {
	return e.generating.Load()
}

// Status reports the current state and the last failure, if any.
func (e *Exporter) Status() Status {
	st := Status{Generating: e.Generating(), Label: LabelIdle}
	if st.Generating {
		st.Label = LabelGenerating
	}
	e.mu.Lock()
	st.LastError = e.lastErr
	e.mu.Unlock()
	return st
}

// Export captures the CV region of req.HTML and returns it as a PDF. It
// returns ErrExportInProgress if another export is running; every other
// failure is an *ExportError.
func (e *Exporter) Export(ctx context.Context, req Request) (*Result, error) {
	if !e.generating.CompareAndSwap(false, true) {
		return nil, ErrExportInProgress
	}
	defer e.generating.Store(false)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := e.export(ctx, req)

	e.mu.Lock()
	if err != nil {
		e.lastErr = DefaultUserMessage
	} else {
		e.lastErr = ""
	}
	e.mu.Unlock()

	if err != nil {
		e.logger.Error("export failed", "component", "capture", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	e.logger.Info("export finished", "component", "capture",
		"file", res.FileName, "pages", res.Pages, "bytes", len(res.PDF), "elapsed", time.Since(start))
	return res, nil
}

func (e *Exporter) export(ctx context.Context, req Request) (*Result, error) {
	selector := req.Selector
	if selector == "" {
		selector = rendering.RegionSelector
	}

	live, err := e.engine.Open(ctx, req.HTML)
	if err != nil {
		return nil, stageError(StageOpen, "failed to load document", err)
	}
	defer closeQuietly(e.logger, "live page", live)

	found, err := live.HasRegion(ctx, selector)
	if err != nil {
		return nil, stageError(StageLocate, "failed to query document", err)
	}
	if !found {
		return nil, stageError(StageLocate, fmt.Sprintf("no element matches %q", selector), ErrRegionNotFound)
	}

	if err := live.NeutralizeTransforms(ctx, selector); err != nil {
		return nil, stageError(StageCapture, "failed to reset transforms", err)
	}
	snap, err := live.CaptureRegion(ctx, selector)
	if err != nil {
		return nil, stageError(StageCapture, "failed to capture region", err)
	}

	doc, err := Isolate(ctx, snap, live, e.logger)
	if err != nil {
		return nil, stageError(StageIsolate, "failed to isolate region", err)
	}

	sandbox, err := e.engine.NewSandbox(ctx)
	if err != nil {
		return nil, stageError(StageRasterize, "failed to create sandbox", err)
	}
	defer closeQuietly(e.logger, "sandbox", sandbox)

	if err := sandbox.SetContent(ctx, doc); err != nil {
		return nil, stageError(StageRasterize, "failed to load sandbox", err)
	}
	raster, err := sandbox.Rasterize(ctx, e.scale)
	if err != nil {
		return nil, stageError(StageRasterize, "failed to rasterize", err)
	}

	pdf, pages, err := AssemblePDF(raster)
	if err != nil {
		return nil, stageError(StageAssemble, "failed to assemble pdf", err)
	}
	width, height := rasterSize(raster)
	return &Result{
		FileName: FileName(req.FullName),
		PDF:      pdf,
		Pages:    pages,
		Width:    width,
		Height:   height,
	}, nil
}

func stageError(stage, msg string, cause error) *ExportError {
	return &ExportError{Stage: stage, Message: msg, Cause: cause}
}

func closeQuietly(logger *slog.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		logger.Warn("failed to close "+what, "component", "capture", "error", err)
	}
}
