package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cv-studio/internal/rendering"
	"github.com/jonathan/cv-studio/internal/types"
)

func TestListTemplates(t *testing.T) {
	s, st := newTestServer(t, nil)
	st.SelectTemplate("model2")

	w := do(t, s.Handler(), http.MethodGet, "/api/templates", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[templateListResponse](t, w)
	assert.Equal(t, "model2", resp.Selected)
	assert.Len(t, resp.Templates, len(rendering.Keys()))
}

func TestSelectTemplate(t *testing.T) {
	s, st := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPut, "/api/template", map[string]string{"template": "model3"})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "model3", st.SelectedTemplate())
	settings := decodeBody[types.TemplateSettings](t, w)
	assert.Equal(t, "model3", settings.SelectedTemplate)
}

func TestSelectTemplate_CustomColors(t *testing.T) {
	s, st := newTestServer(t, nil)
	colors := types.CustomColors{Primary: "#112233", Secondary: "#445566", Accent: "#778899"}

	w := do(t, s.Handler(), http.MethodPut, "/api/template", map[string]any{"customColors": colors})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := st.State().Templates
	assert.Equal(t, types.DefaultTemplate, got.SelectedTemplate)
	require.NotNil(t, got.CustomColors)
	assert.Equal(t, colors, *got.CustomColors)
}

func TestSelectTemplate_Rejected(t *testing.T) {
	s, st := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodPut, "/api/template", map[string]string{"template": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s.Handler(), http.MethodPut, "/api/template", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, types.DefaultTemplate, st.SelectedTemplate())
}

func TestRender_UsesQueryTemplate(t *testing.T) {
	s, _ := newTestServer(t, nil)

	w := do(t, s.Handler(), http.MethodGet, "/api/render?template=model2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, `id="`+rendering.RegionID+`"`)
	assert.Contains(t, body, "Jean Dupont")
	assert.NotContains(t, body, "EventSource")
}

func TestRender_UnknownTemplateFallsBack(t *testing.T) {
	s, _ := newTestServer(t, nil)

	want, err := rendering.Document(types.DefaultCVData(), types.DefaultTemplateSettings())
	require.NoError(t, err)

	w := do(t, s.Handler(), http.MethodGet, "/api/render?template=missing", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, want, w.Body.String())
}

func TestPreview(t *testing.T) {
	exp := &fakeExporter{status: statusWith(false, "Erreur lors de la génération du PDF")}
	s, _ := newTestServer(t, exp)

	w := do(t, s.Handler(), http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "EventSource")
	assert.Contains(t, body, "/api/events")
	assert.Contains(t, body, "Télécharger le PDF")
	assert.Contains(t, body, "Erreur lors de la génération du PDF")
}

func TestPreview_Generating(t *testing.T) {
	exp := &fakeExporter{status: statusWith(true, "")}
	s, _ := newTestServer(t, exp)

	w := do(t, s.Handler(), http.MethodGet, "/", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Génération en cours...")
	assert.Contains(t, body, " disabled")
}
