package server

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/jonathan/cv-studio/internal/capture"
	"github.com/jonathan/cv-studio/internal/rendering"
)

// handleExport renders the preview page, captures its CV region and returns
// the paginated PDF as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, errExportUnavailable)
		return
	}

	state := s.store.State()
	html, err := rendering.PreviewPage(state.CV, state.Templates, rendering.PreviewOptions{})
	if err != nil {
		s.writeError(w, err)
		return
	}

	var fullName string
	if state.CV.PersonalInfo != nil {
		fullName = state.CV.PersonalInfo.FullName
	}

	res, err := s.exporter.Export(r.Context(), capture.Request{HTML: html, FullName: fullName})
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-PDF-Pages", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.PDF); err != nil {
		s.logger.Warn("failed to write pdf", "error", err)
	}
}

// handleExportStatus reports whether an export is running and the last
// failure shown to the user.
func (s *Server) handleExportStatus(w http.ResponseWriter, _ *http.Request) {
	if s.exporter == nil {
		s.writeError(w, errExportUnavailable)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.exporter.Status())
}
