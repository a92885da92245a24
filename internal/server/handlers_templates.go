package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/types"
)

type templateListResponse struct {
	Selected  string               `json:"selected"`
	Templates []rendering.Template `json:"templates"`
}

func (s *Server) handleListTemplates(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, templateListResponse{
		Selected:  s.store.SelectedTemplate(),
		Templates: rendering.Templates(),
	})
}

type selectTemplateRequest struct {
	Template     string              `json:"template"`
	CustomColors *types.CustomColors `json:"customColors"`
}

// handleSelectTemplate changes the selected template, the custom palette, or
// both.
func (s *Server) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req selectTemplateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Template == "" && req.CustomColors == nil {
		s.writeError(w, &ErrValidation{Field: "template", Message: "template or customColors is required"})
		return
	}
	if req.Template != "" && !rendering.Has(req.Template) {
		s.writeError(w, &ErrValidation{
			Field:   "template",
			Message: fmt.Sprintf("unknown template %q (available: %s)", req.Template, strings.Join(rendering.Keys(), ", ")),
		})
		return
	}

	if req.Template != "" {
		s.store.SelectTemplate(req.Template)
	}
	if req.CustomColors != nil {
		s.store.SetCustomColors(req.CustomColors)
	}
	s.jsonResponse(w, http.StatusOK, s.store.State().Templates)
}

// settingsFor returns the stored template settings, with the template
// overridden by the "template" query parameter when present.
func (s *Server) settingsFor(r *http.Request) types.TemplateSettings {
	settings := s.store.State().Templates
	if key := r.URL.Query().Get("template"); key != "" {
		settings.SelectedTemplate = key
	}
	return settings
}

// handleRender returns a standalone page holding only the CV region.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	html, err := rendering.Document(s.store.Snapshot(), s.settingsFor(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeHTML(w, html)
}

// handlePreview serves the editor preview: the CV inside the application
// chrome with the export button and the live reload stream.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	opts := rendering.PreviewOptions{
		EventsURL: "/api/events",
		Badge:     true,
	}
	if s.exporter != nil {
		status := s.exporter.Status()
		opts.ExportLabel = status.Label
		opts.Generating = status.Generating
		opts.ExportError = status.LastError
	}

	html, err := rendering.PreviewPage(s.store.Snapshot(), s.settingsFor(r), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeHTML(w, html)
}

func writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}
