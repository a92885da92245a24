package rendering

import (
	"embed"
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/jonathan/cv-studio/internal/types"
)

// RegionID is the id of the element wrapping the rendered CV.
const RegionID = "cv-document"

// RegionSelector selects the rendered CV in a page.
const RegionSelector = "#" + RegionID

// PreviewScale is the display-only zoom applied to the region in the preview.
const PreviewScale = 0.9

//go:embed layouts/*.gohtml
var layoutFS embed.FS

var (
	parseOnce sync.Once
	parsed    map[string]*template.Template
	parseErr  error
)

// layouts parses every registered template once. Each set holds the shared
// base definitions plus the template's own styles and content.
func layouts() (map[string]*template.Template, error) {
	parseOnce.Do(func() {
		parsed = make(map[string]*template.Template, len(registry))
		for key := range registry {
			tmpl, err := template.New(key).ParseFS(layoutFS, "layouts/base.gohtml", "layouts/"+key+".gohtml")
			if err != nil {
				parseErr = &TemplateError{Template: key, Cause: err}
				return
			}
			parsed[key] = tmpl
		}
	})
	return parsed, parseErr
}

// PreviewOptions configures the app chrome around the previewed CV.
type PreviewOptions struct {
	Title       string
	ExportURL   string
	ExportLabel string
	ExportError string
	Generating  bool
	// EventsURL enables live reload from a server-sent event stream.
	EventsURL string
	// Badge shows the template name over the CV. It is excluded from
	// exports.
	Badge bool
}

type page struct {
	View      view
	Options   PreviewOptions
	Templates []Template
}

// Render returns the markup of the CV region for the template key. Unknown
// keys render the default template.
func Render(cv types.CVData, key string) (string, error) {
	return execute("region", cv, types.TemplateSettings{SelectedTemplate: key}, PreviewOptions{})
}

// Document returns a standalone HTML page holding only the CV region and the
// template stylesheet.
func Document(cv types.CVData, settings types.TemplateSettings) (string, error) {
	return execute("document", cv, settings, PreviewOptions{})
}

// PreviewPage returns the CV region inside the application chrome, scaled for
// on-screen display.
func PreviewPage(cv types.CVData, settings types.TemplateSettings, opts PreviewOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = "CV Studio"
	}
	if opts.ExportURL == "" {
		opts.ExportURL = "/api/export"
	}
	if opts.ExportLabel == "" {
		opts.ExportLabel = "Télécharger le PDF"
	}
	return execute("preview", cv, settings, opts)
}

func execute(name string, cv types.CVData, settings types.TemplateSettings, opts PreviewOptions) (string, error) {
	sets, err := layouts()
	if err != nil {
		return "", err
	}
	tmpl, _ := Lookup(settings.SelectedTemplate)

	v := buildView(cv, tmpl, resolveColors(settings.CustomColors))
	v.Badge = opts.Badge
	data := page{View: v, Options: opts, Templates: Templates()}

	var out strings.Builder
	target := any(data)
	if name == "region" {
		target = data.View
	}
	if err := sets[tmpl.Key].ExecuteTemplate(&out, name, target); err != nil {
		return "", &RenderError{Template: tmpl.Key, Block: name, Cause: err}
	}
	return out.String(), nil
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// resolveColors fills unset or malformed custom colors from the stock palette.
func resolveColors(custom *types.CustomColors) types.CustomColors {
	colors := types.DefaultCustomColors()
	if custom == nil {
		return colors
	}
	if hexColor.MatchString(custom.Primary) {
		colors.Primary = custom.Primary
	}
	if hexColor.MatchString(custom.Secondary) {
		colors.Secondary = custom.Secondary
	}
	if hexColor.MatchString(custom.Accent) {
		colors.Accent = custom.Accent
	}
	return colors
}
