package rendering

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/jonathan/cv-studio/internal/types"
)

// view is the data passed to a layout template. It is derived from a CV
// snapshot and never shares slices with it.
type view struct {
	Template        Template
	Colors          types.CustomColors
	HasPerson       bool
	Person          personView
	Experiences     []experienceView
	Education       []educationView
	Projects        []projectView
	Skills          []string
	SkillLine       string
	SkillCategories []categoryView
	Languages       []languageView
	Certifications  []certificationView
	Interests       []interestView
	Badge           bool
}

type personView struct {
	Name           string
	Initials       string
	Title          string
	Email          string
	Phone          string
	Location       string
	Summary        string
	Objective      string
	Photo          template.URL
	Status         string
	ContactLine    string
	Links          []linkView
	Keywords       []string
	DrivingLicense bool
}

type linkView struct {
	Label string
	URL   string
}

type experienceView struct {
	Role         string
	Company      string
	Location     string
	Dates        string
	Current      bool
	ContractType string
	Description  string
	Achievements []string
	Technologies []string
	Projects     []types.ExperienceProject
}

type educationView struct {
	Degree         string
	Institution    string
	Location       string
	Dates          string
	Current        bool
	Specialization string
	Honors         string
	Thesis         string
	GPA            string
	Courses        string
	Description    string
}

type projectView struct {
	Name         string
	Role         string
	Description  string
	Dates        string
	URL          string
	GitHub       string
	Technologies []string
}

type categoryView struct {
	Name   string
	Skills []skillView
	Names  string
}

type skillView struct {
	Name       string
	Level      int
	LevelLabel string
	Dots       []bool
	Years      string
}

type languageView struct {
	Name        string
	Level       string
	LevelLabel  string
	Certificate string
}

type certificationView struct {
	Name         string
	Issuer       string
	IssueDate    string
	ExpiryDate   string
	CredentialID string
	URL          string
	Skills       []string
}

type interestView struct {
	Category    string
	Title       string
	Description string
}

// buildView derives the layout data of t from cv. Only the skill
// representation t declares is populated.
func buildView(cv types.CVData, t Template, colors types.CustomColors) view {
	v := view{
		Template: t,
		Colors:   colors,
		Person:   buildPerson(cv.PersonalInfo),
	}
	v.HasPerson = cv.PersonalInfo != nil

	for _, e := range cv.Experiences {
		v.Experiences = append(v.Experiences, experienceView{
			Role:         e.Role,
			Company:      e.Company,
			Location:     e.Location,
			Dates:        DateRange(e.StartDate, e.EndDate, e.Current, t.Present),
			Current:      e.Current,
			ContractType: e.ContractType,
			Description:  e.Description,
			Achievements: nonBlank(e.Achievements),
			Technologies: nonBlank(e.Technologies),
			Projects:     append([]types.ExperienceProject(nil), e.Projects...),
		})
	}

	for _, e := range cv.Education {
		v.Education = append(v.Education, educationView{
			Degree:         e.Degree,
			Institution:    e.Institution,
			Location:       e.Location,
			Dates:          DateRange(e.StartDate, e.EndDate, e.Current, t.Ongoing),
			Current:        e.Current,
			Specialization: e.Specialization,
			Honors:         e.Honors,
			Thesis:         e.Thesis,
			GPA:            e.GPA,
			Courses:        JoinNonEmpty(", ", e.RelevantCourses...),
			Description:    e.Description,
		})
	}

	for _, p := range cv.Projects {
		v.Projects = append(v.Projects, projectView{
			Name:         p.Name,
			Role:         p.Role,
			Description:  p.Description,
			Dates:        projectDates(p),
			URL:          p.URL,
			GitHub:       p.GitHub,
			Technologies: nonBlank(p.Technologies),
		})
	}

	switch t.SkillSource {
	case SkillsCategorized:
		for _, c := range cv.SkillCategories {
			if cat, ok := buildCategory(c); ok {
				v.SkillCategories = append(v.SkillCategories, cat)
			}
		}
	default:
		v.Skills = nonBlank(cv.Skills)
		v.SkillLine = strings.Join(v.Skills, " • ")
	}

	for _, l := range cv.Languages {
		lv := languageView{Name: l.Language, Level: l.Level, LevelLabel: LanguageLevelLabel(l.Level)}
		if l.Certified {
			lv.Certificate = l.CertificateName
		}
		v.Languages = append(v.Languages, lv)
	}

	for _, c := range cv.Certifications {
		v.Certifications = append(v.Certifications, certificationView{
			Name:         c.Name,
			Issuer:       c.Issuer,
			IssueDate:    c.IssueDate,
			ExpiryDate:   c.ExpiryDate,
			CredentialID: c.CredentialID,
			URL:          c.VerificationURL,
			Skills:       nonBlank(c.AssociatedSkills),
		})
	}

	for _, i := range cv.Interests {
		v.Interests = append(v.Interests, interestView{Category: i.Category, Title: i.Title, Description: i.Description})
	}
	return v
}

func buildPerson(p *types.PersonalInfo) personView {
	if p == nil {
		return personView{Name: PlaceholderName, Initials: Initials(PlaceholderName)}
	}
	name := strings.TrimSpace(p.FullName)
	if name == "" {
		name = PlaceholderName
	}
	pv := personView{
		Name:           name,
		Initials:       Initials(name),
		Title:          p.Title,
		Email:          p.Email,
		Phone:          p.Phone,
		Location:       FormatLocation(p.Location),
		Summary:        p.Summary,
		Objective:      p.CareerObjective,
		Photo:          photoURL(p.ProfileImage),
		Status:         p.ProfessionalStatus,
		Keywords:       nonBlank(p.Keywords),
		DrivingLicense: p.DrivingLicense,
	}
	pv.ContactLine = JoinNonEmpty(" • ", pv.Email, pv.Phone, pv.Location)
	if s := p.SocialLinks; s != nil {
		pv.Links = appendLink(pv.Links, "LinkedIn", s.LinkedIn)
		pv.Links = appendLink(pv.Links, "GitHub", s.GitHub)
		pv.Links = appendLink(pv.Links, "Portfolio", s.Portfolio)
		for _, o := range s.Other {
			label := o.Label
			if label == "" {
				label = o.URL
			}
			pv.Links = appendLink(pv.Links, label, o.URL)
		}
	}
	return pv
}

// photoURL trusts inline raster images and http(s) URLs. Anything else is
// dropped.
func photoURL(src string) template.URL {
	src = strings.TrimSpace(src)
	lower := strings.ToLower(src)
	for _, prefix := range []string{"data:image/png;", "data:image/jpeg;", "data:image/gif;", "data:image/webp;", "https://", "http://"} {
		if strings.HasPrefix(lower, prefix) {
			return template.URL(src) //nolint:gosec // prefix checked above
		}
	}
	return ""
}

func appendLink(links []linkView, label, url string) []linkView {
	if strings.TrimSpace(url) == "" {
		return links
	}
	return append(links, linkView{Label: label, URL: url})
}

func buildCategory(c types.SkillCategory) (categoryView, bool) {
	cat := categoryView{Name: c.DisplayName()}
	names := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		if strings.TrimSpace(s.Name) == "" {
			continue
		}
		sv := skillView{Name: s.Name}
		if s.Level != nil {
			sv.Level = *s.Level
			sv.LevelLabel = SkillLevelLabel(sv.Level)
			sv.Dots = SkillDots(sv.Level)
		}
		if s.YearsOfExperience != nil && *s.YearsOfExperience > 0 {
			sv.Years = yearsLabel(*s.YearsOfExperience)
		}
		cat.Skills = append(cat.Skills, sv)
		names = append(names, s.Name)
	}
	cat.Names = strings.Join(names, ", ")
	return cat, len(cat.Skills) > 0
}

func projectDates(p types.ProjectEntry) string {
	if p.StartDate == "" {
		return p.EndDate
	}
	return JoinNonEmpty(" - ", p.StartDate, p.EndDate)
}

func yearsLabel(n int) string {
	if n == 1 {
		return "1 an"
	}
	return strconv.Itoa(n) + " ans"
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
