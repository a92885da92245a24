package rendering

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/cv-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRegion(t *testing.T, html string) *goquery.Selection {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	region := doc.Find(RegionSelector)
	require.Equal(t, 1, region.Length(), "exactly one CV region")
	return region
}

func renderRegion(t *testing.T, cv types.CVData, key string) *goquery.Selection {
	t.Helper()
	html, err := Render(cv, key)
	require.NoError(t, err)
	return parseRegion(t, html)
}

// nearEmptyInputs are the inputs every template must tolerate.
func nearEmptyInputs() map[string]types.CVData {
	onlyPerson := types.EmptyCVData()
	onlyPerson.PersonalInfo = &types.PersonalInfo{FullName: "Jean Dupont", Email: "jean.dupont@example.com"}

	blankPerson := types.EmptyCVData()
	blankPerson.PersonalInfo = &types.PersonalInfo{}

	oneOfEach := types.EmptyCVData()
	oneOfEach.Experiences = []types.ExperienceEntry{{Role: "Dev", Company: "Acme"}}
	oneOfEach.Education = []types.EducationEntry{{Degree: "Master", Institution: "ENS"}}
	oneOfEach.Projects = []types.ProjectEntry{{Name: "Site"}}
	oneOfEach.Skills = []string{"Go"}
	oneOfEach.SkillCategories = []types.SkillCategory{{Category: "Techniques", Skills: []types.SkillEntry{{Name: "Go"}}}}
	oneOfEach.Languages = []types.LanguageEntry{{Language: "Anglais", Level: "B2"}}
	oneOfEach.Certifications = []types.CertificationEntry{{Name: "CKA", Issuer: "CNCF"}}
	oneOfEach.Interests = []types.InterestEntry{{Category: "Sport", Title: "Escalade"}}

	return map[string]types.CVData{
		"zero value":   {},
		"empty":        types.EmptyCVData(),
		"only person":  onlyPerson,
		"blank person": blankPerson,
		"one of each":  oneOfEach,
		"defaults":     types.DefaultCVData(),
	}
}

func TestTemplates_Conformance(t *testing.T) {
	for _, tmpl := range Templates() {
		for name, cv := range nearEmptyInputs() {
			t.Run(tmpl.Key+"/"+name, func(t *testing.T) {
				before := cv.Clone()

				region := renderRegion(t, cv, tmpl.Key)

				assert.Equal(t, tmpl.Key, region.AttrOr("data-template", ""))
				assert.Equal(t, before, cv, "rendering must not mutate the snapshot")
				region.Find("[data-section]").Each(func(_ int, s *goquery.Selection) {
					assert.NotEmpty(t, strings.TrimSpace(s.Text()), "section %s is empty", s.AttrOr("data-section", ""))
				})
			})
		}
	}
}

func TestTemplates_EmptyCVOmitsAllSections(t *testing.T) {
	for _, tmpl := range Templates() {
		t.Run(tmpl.Key, func(t *testing.T) {
			region := renderRegion(t, types.EmptyCVData(), tmpl.Key)

			assert.Zero(t, region.Find("[data-section]").Length())
			assert.Zero(t, region.Find("h2").Length(), "no section headings")
			assert.Contains(t, region.Text(), PlaceholderName)
		})
	}
}

func TestTemplates_SectionPerList(t *testing.T) {
	cv := types.DefaultCVData()
	cv.Skills = []string{"Go", "SQL"}
	for _, tmpl := range Templates() {
		t.Run(tmpl.Key, func(t *testing.T) {
			region := renderRegion(t, cv, tmpl.Key)

			assert.Equal(t, 1, region.Find(`[data-section="experiences"]`).Length())
			assert.Equal(t, len(cv.Experiences), region.Find(`[data-entry="experience"]`).Length())
			assert.Equal(t, 1, region.Find(`[data-section="skills"]`).Length())
			assert.Contains(t, region.Text(), cv.PersonalInfo.FullName)
		})
	}
}

func TestTemplates_SkillSourceExclusive(t *testing.T) {
	flatOnly := types.EmptyCVData()
	flatOnly.Skills = []string{"Kubernetes"}

	categorizedOnly := types.EmptyCVData()
	categorizedOnly.SkillCategories = []types.SkillCategory{
		{Category: "Techniques", Skills: []types.SkillEntry{{Name: "Terraform", Level: types.IntPtr(4)}}},
	}

	for _, tmpl := range Templates() {
		t.Run(tmpl.Key, func(t *testing.T) {
			flat := renderRegion(t, flatOnly, tmpl.Key)
			categorized := renderRegion(t, categorizedOnly, tmpl.Key)

			switch tmpl.SkillSource {
			case SkillsFlat:
				assert.Contains(t, flat.Text(), "Kubernetes")
				assert.Zero(t, categorized.Find(`[data-section="skills"]`).Length())
				assert.NotContains(t, categorized.Text(), "Terraform")
			case SkillsCategorized:
				assert.Contains(t, categorized.Text(), "Terraform")
				assert.Zero(t, flat.Find(`[data-section="skills"]`).Length())
				assert.NotContains(t, flat.Text(), "Kubernetes")
			default:
				t.Fatalf("template %s declares no skill source", tmpl.Key)
			}
		})
	}
}

func TestTemplates_CurrentIsOpenEnded(t *testing.T) {
	cv := types.EmptyCVData()
	cv.Experiences = []types.ExperienceEntry{
		{Role: "Lead", Company: "Acme", StartDate: "2021-01", EndDate: "2022-06", Current: true},
	}
	cv.Education = []types.EducationEntry{
		{Degree: "Doctorat", Institution: "Sorbonne", StartDate: "2023", EndDate: "2026", Current: true},
	}

	for _, tmpl := range Templates() {
		t.Run(tmpl.Key, func(t *testing.T) {
			region := renderRegion(t, cv, tmpl.Key)

			exp := region.Find(`[data-entry="experience"]`).Text()
			assert.Contains(t, exp, "2021-01 - "+tmpl.Present)
			assert.NotContains(t, exp, "2022-06")

			if edu := region.Find(`[data-entry="education"]`); edu.Length() > 0 {
				assert.Contains(t, edu.Text(), "2023 - "+tmpl.Ongoing)
				assert.NotContains(t, edu.Text(), "2026")
			}
		})
	}
}

func TestTemplates_Deterministic(t *testing.T) {
	cv := types.DefaultCVData()
	for _, key := range Keys() {
		first, err := Render(cv, key)
		require.NoError(t, err)
		_, err = Render(cv, "model3")
		require.NoError(t, err)
		second, err := Render(cv, key)
		require.NoError(t, err)
		assert.Equal(t, first, second, key)
	}
}

func TestRender_UnknownKeyFallsBack(t *testing.T) {
	cv := types.DefaultCVData()

	unknown, err := Render(cv, "model42")
	require.NoError(t, err)
	def, err := Render(cv, types.DefaultTemplate)
	require.NoError(t, err)

	assert.Equal(t, def, unknown)
	assert.Equal(t, types.DefaultTemplate, parseRegion(t, unknown).AttrOr("data-template", ""))
}

func TestRender_ScenarioMinimalPersonOnly(t *testing.T) {
	cv := types.EmptyCVData()
	cv.PersonalInfo = &types.PersonalInfo{FullName: "Jean Dupont", Email: "jean.dupont@example.com"}

	region := renderRegion(t, cv, "minimal")
	text := region.Text()

	assert.Contains(t, text, "Jean Dupont")
	assert.Contains(t, text, "jean.dupont@example.com")
	headings := region.Find("h2").Text()
	assert.NotContains(t, headings, "Expérience")
	assert.NotContains(t, headings, "Compétences")
	assert.NotContains(t, text, "•", "single contact item carries no separator")
}

func TestRender_ScenarioExperienceOrder(t *testing.T) {
	cv := types.EmptyCVData()
	cv.Experiences = types.AppendEntry(cv.Experiences, types.ExperienceEntry{
		ID: "a", Role: "Tech Lead", Company: "Nova", StartDate: "2022-03", Current: true,
	})
	cv.Experiences = types.AppendEntry(cv.Experiences, types.ExperienceEntry{
		ID: "b", Role: "Développeur", Company: "Orbit", StartDate: "2018-09", EndDate: "2022-02",
	})

	for _, key := range []string{"minimal", "modern", "model6"} {
		t.Run(key, func(t *testing.T) {
			tmpl, _ := Lookup(key)
			entries := renderRegion(t, cv, key).Find(`[data-entry="experience"]`)
			require.Equal(t, 2, entries.Length())

			first := entries.Eq(0).Text()
			second := entries.Eq(1).Text()
			assert.Contains(t, first, "Tech Lead")
			assert.Contains(t, first, "2022-03 - "+tmpl.Present)
			assert.Contains(t, second, "Développeur")
			assert.Contains(t, second, "2018-09 - 2022-02")
			assert.NotContains(t, second, tmpl.Present)
		})
	}
}

func TestRender_SingleSkillHasNoSeparator(t *testing.T) {
	cv := types.EmptyCVData()
	cv.Skills = []string{"Go"}

	skills := renderRegion(t, cv, "minimal").Find(`[data-section="skills"] p`)
	assert.Equal(t, "Go", strings.TrimSpace(skills.Text()))

	cv.Skills = []string{"Go", "SQL"}
	skills = renderRegion(t, cv, "minimal").Find(`[data-section="skills"] p`)
	assert.Equal(t, "Go • SQL", strings.TrimSpace(skills.Text()))
}

func TestRender_LanguageWithoutLevelHasNoSeparator(t *testing.T) {
	cv := types.EmptyCVData()
	cv.Languages = []types.LanguageEntry{{Language: "Portugais"}}

	for _, key := range Keys() {
		t.Run(key, func(t *testing.T) {
			section := renderRegion(t, cv, key).Find(`[data-section="languages"]`)
			if section.Length() == 0 {
				return
			}
			section.Find("li, p.cv-text").Each(func(_ int, item *goquery.Selection) {
				text := strings.TrimSpace(item.Text())
				assert.Equal(t, "Portugais", text)
			})
			assert.NotContains(t, section.Text(), "()")
		})
	}
}

func TestRender_SkillLevelsInSidebar(t *testing.T) {
	cv := types.EmptyCVData()
	cv.SkillCategories = []types.SkillCategory{
		{Category: "Autres", CustomCategoryName: "Cloud", Skills: []types.SkillEntry{{Name: "AWS", Level: types.IntPtr(3)}}},
	}

	skills := renderRegion(t, cv, "model6").Find(`[data-section="skills"]`)
	assert.Contains(t, skills.Text(), "Cloud")
	assert.Equal(t, 5, skills.Find(".cv-bar").Length())
	assert.Equal(t, 3, skills.Find(".cv-bar.is-on").Length())
}

func TestRender_EscapesContent(t *testing.T) {
	cv := types.EmptyCVData()
	cv.PersonalInfo = &types.PersonalInfo{FullName: "<script>alert(1)</script>", Email: "a@b.co"}

	html, err := Render(cv, "modern")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, parseRegion(t, html).Find(".cv-name").Text(), "<script>alert(1)</script>")
}

func TestDocument_Standalone(t *testing.T) {
	settings := types.TemplateSettings{SelectedTemplate: "model2", CustomColors: &types.CustomColors{Primary: "#112233", Secondary: "red;}", Accent: "#abc"}}

	html, err := Document(types.DefaultCVData(), settings)
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(RegionSelector).Length())
	assert.Zero(t, doc.Find("script").Length())
	assert.Zero(t, doc.Find(".app-header").Length())

	style := doc.Find("style").Text()
	assert.Contains(t, style, "--cv-primary: #112233")
	assert.Contains(t, style, "--cv-secondary: #1F2937", "malformed colors fall back")
	assert.Contains(t, style, "oklch(")
}

func TestPreviewPage_Chrome(t *testing.T) {
	settings := types.TemplateSettings{SelectedTemplate: "model7"}

	html, err := PreviewPage(types.DefaultCVData(), settings, PreviewOptions{Badge: true, EventsURL: "/api/events", Generating: true, ExportLabel: "Génération en cours..."})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	content := doc.Find(".cv-preview-content")
	require.Equal(t, 1, content.Length())
	assert.Equal(t, 1, content.Find(RegionSelector).Length())
	assert.Contains(t, doc.Find("style").Text(), "scale(0.9)")

	badge := doc.Find(RegionSelector + " [data-capture-exclude]")
	assert.Equal(t, "Timeline", badge.Text())

	assert.Equal(t, len(Templates()), doc.Find(".template-option").Length())
	assert.Equal(t, "Timeline", doc.Find(".template-option.is-active").Text())

	button := doc.Find(".export-button")
	_, disabled := button.Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, "Génération en cours...", button.Text())
	assert.Contains(t, doc.Find("script").Text(), "EventSource")
}

func TestPreviewPage_Defaults(t *testing.T) {
	html, err := PreviewPage(types.EmptyCVData(), types.TemplateSettings{}, PreviewOptions{})
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	assert.Equal(t, "CV Studio", doc.Find("title").Text())
	assert.Equal(t, "Télécharger le PDF", doc.Find(".export-button").Text())
	assert.Equal(t, "/api/export", doc.Find("form").AttrOr("action", ""))
	assert.Zero(t, doc.Find("[data-capture-exclude]").Length())
	assert.Zero(t, doc.Find("script").Length())
}

func TestRegistry(t *testing.T) {
	keys := Keys()
	assert.GreaterOrEqual(t, len(keys), 9)
	assert.Equal(t, "minimal", keys[0])
	assert.True(t, Has(types.DefaultTemplate))
	assert.False(t, Has("unknown"))

	tmpl, found := Lookup("")
	assert.False(t, found)
	assert.Equal(t, types.DefaultTemplate, tmpl.Key)

	seen := map[string]bool{}
	for _, tmpl := range Templates() {
		assert.False(t, seen[tmpl.Name], "duplicate name %s", tmpl.Name)
		seen[tmpl.Name] = true
		assert.NotEmpty(t, tmpl.Present)
		assert.NotEmpty(t, tmpl.Ongoing)
	}
}
