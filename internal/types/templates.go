package types

// DefaultTemplate is the template key selected in a fresh session and used
// whenever a stored key is unknown.
const DefaultTemplate = "modern"

// CustomColors overrides the accent palette of templates that support it.
type CustomColors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

// TemplateSettings is the template selection persisted next to the CV.
type TemplateSettings struct {
	SelectedTemplate string        `json:"selectedTemplate"`
	CustomColors     *CustomColors `json:"customColors,omitempty"`
}

// DefaultCustomColors returns the stock palette.
func DefaultCustomColors() CustomColors {
	return CustomColors{
		Primary:   "#3B82F6",
		Secondary: "#1F2937",
		Accent:    "#10B981",
	}
}

// DefaultTemplateSettings returns the settings of a fresh session.
func DefaultTemplateSettings() TemplateSettings {
	colors := DefaultCustomColors()
	return TemplateSettings{
		SelectedTemplate: DefaultTemplate,
		CustomColors:     &colors,
	}
}

// Clone returns a deep copy of the settings.
func (t TemplateSettings) Clone() TemplateSettings {
	if t.CustomColors != nil {
		c := *t.CustomColors
		t.CustomColors = &c
	}
	return t
}
