package server

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/rendering"
)

// fakeExporter records requests and returns a canned result or error.
type fakeExporter struct {
	mu       sync.Mutex
	requests []capture.Request
	result   *capture.Result
	err      error
	status   capture.Status
}

func (f *fakeExporter) Export(_ context.Context, req capture.Request) (*capture.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &capture.Result{
		FileName: capture.FileName(req.FullName),
		PDF:      []byte("%PDF-1.3 fake"),
		Pages:    1,
	}, nil
}

func (f *fakeExporter) Status() capture.Status {
	return f.status
}

func statusWith(generating bool, lastError string) capture.Status {
	st := capture.Status{Generating: generating, Label: capture.LabelIdle, LastError: lastError}
	if generating {
		st.Label = capture.LabelGenerating
	}
	return st
}

func TestExport_ReturnsPDF(t *testing.T) {
	exp := &fakeExporter{}
	s, _ := newTestServer(t, exp)

	w := do(t, s.Handler(), http.MethodPost, "/api/export", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-PDF-Pages"))
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())

	_, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "CV_Jean_Dupont.pdf", params["filename"])

	require.Len(t, exp.requests, 1)
	req := exp.requests[0]
	assert.Equal(t, "Jean Dupont", req.FullName)
	assert.Contains(t, req.HTML, `id="`+rendering.RegionID+`"`)
	assert.NotContains(t, req.HTML, "EventSource")
}

func TestExport_NonASCIIFileName(t *testing.T) {
	exp := &fakeExporter{result: &capture.Result{FileName: "CV_José_Álvarez.pdf", PDF: []byte("%PDF"), Pages: 2}}
	s, _ := newTestServer(t, exp)

	w := do(t, s.Handler(), http.MethodPost, "/api/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	_, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "CV_José_Álvarez.pdf", params["filename"])
}

func TestExport_EmptyNameUsesFallback(t *testing.T) {
	exp := &fakeExporter{}
	s, st := newTestServer(t, exp)
	require.NoError(t, st.SetPersonalInfo(nil))

	w := do(t, s.Handler(), http.MethodPost, "/api/export", nil)

	require.Equal(t, http.StatusOK, w.Code)
	_, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	require.NoError(t, err)
	assert.Equal(t, "CV_document.pdf", params["filename"])
}

func TestExport_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name: "in progress",
			err:  capture.ErrExportInProgress,
			code: http.StatusConflict,
		},
		{
			name:    "pipeline failure",
			err:     &capture.ExportError{Stage: capture.StageRasterize, Message: "failed to rasterize", Cause: errors.New("boom")},
			code:    http.StatusBadGateway,
			message: capture.DefaultUserMessage,
		},
		{
			name:    "region missing",
			err:     &capture.ExportError{Stage: capture.StageLocate, Message: "no element", Cause: capture.ErrRegionNotFound},
			code:    http.StatusBadGateway,
			message: capture.DefaultUserMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestServer(t, &fakeExporter{err: tt.err})

			w := do(t, s.Handler(), http.MethodPost, "/api/export", nil)

			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				resp := decodeBody[map[string]string](t, w)
				assert.Equal(t, tt.message, resp["error"])
			}
		})
	}
}

func TestExport_Unavailable(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPost, "/api/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(t, s.Handler(), http.MethodGet, "/api/export/status", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestExportStatus(t *testing.T) {
	exp := &fakeExporter{status: statusWith(true, "")}
	s, _ := newTestServer(t, exp)

	w := do(t, s.Handler(), http.MethodGet, "/api/export/status", nil)

	require.Equal(t, http.StatusOK, w.Code)
	status := decodeBody[capture.Status](t, w)
	assert.True(t, status.Generating)
	assert.Equal(t, capture.LabelGenerating, status.Label)
}
