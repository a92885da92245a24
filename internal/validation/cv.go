package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-studio/internal/types"
)

var (
	yearMonthPattern = regexp.MustCompile(`^\d{4}(-(0[1-9]|1[0-2]))?$`)
	phonePattern     = regexp.MustCompile(`^[\d\s\-+()]+$`)
)

// MaxFlatSkills caps the flat skill list.
const MaxFlatSkills = 50

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// engine returns the shared validator with the CV tags registered.
func engine() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister(v, "yearmonth", func(fl validator.FieldLevel) bool {
			return yearMonthPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "professional_status", enumValidator(types.ProfessionalStatuses))
		mustRegister(v, "contract_type", enumValidator(types.ContractTypes))
		mustRegister(v, "cefr", enumValidator(types.CEFRLevels))
		mustRegister(v, "language_level", enumValidator(types.LanguageLevels))
		mustRegister(v, "skill_category", enumValidator(types.SkillCategories))
		mustRegister(v, "interest_category", enumValidator(types.InterestCategories))

		v.RegisterStructValidation(experienceDates, types.ExperienceEntry{})
		v.RegisterStructValidation(educationDates, types.EducationEntry{})
		v.RegisterStructValidation(projectDates, types.ProjectEntry{})
		v.RegisterStructValidation(certificationDates, types.CertificationEntry{})

		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

func enumValidator(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return types.Contains(allowed, fl.Field().String())
	}
}

// comparableMonth maps "YYYY" to "YYYY-01" so that both accepted formats
// order correctly as strings.
func comparableMonth(date string) string {
	if len(date) == 4 {
		return date + "-01"
	}
	return date
}

// DateRangeValid reports whether start is not after end. Missing or
// malformed bounds are not compared.
func DateRangeValid(start, end string) bool {
	if start == "" || end == "" {
		return true
	}
	if !yearMonthPattern.MatchString(start) || !yearMonthPattern.MatchString(end) {
		return true
	}
	return comparableMonth(start) <= comparableMonth(end)
}

func experienceDates(sl validator.StructLevel) {
	e := sl.Current().Interface().(types.ExperienceEntry)
	if !e.Current && !DateRangeValid(e.StartDate, e.EndDate) {
		sl.ReportError(e.EndDate, "endDate", "EndDate", "daterange", "")
	}
}

func educationDates(sl validator.StructLevel) {
	e := sl.Current().Interface().(types.EducationEntry)
	if !e.Current && !DateRangeValid(e.StartDate, e.EndDate) {
		sl.ReportError(e.EndDate, "endDate", "EndDate", "daterange", "")
	}
}

func projectDates(sl validator.StructLevel) {
	p := sl.Current().Interface().(types.ProjectEntry)
	if !DateRangeValid(p.StartDate, p.EndDate) {
		sl.ReportError(p.EndDate, "endDate", "EndDate", "daterange", "")
	}
}

func certificationDates(sl validator.StructLevel) {
	c := sl.Current().Interface().(types.CertificationEntry)
	if !DateRangeValid(c.IssueDate, c.ExpiryDate) {
		sl.ReportError(c.ExpiryDate, "expiryDate", "ExpiryDate", "daterange", "")
	}
}

// check validates one struct and reports its field errors under prefix.
func check(prefix string, s any) *Errors {
	out := &Errors{}
	err := engine().Struct(s)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.add(strings.TrimSuffix(prefix, "."), "invalid", err.Error())
		return out
	}
	for _, fe := range verrs {
		// Drop the root type name, keep the JSON path below it.
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		out.add(prefix+path, fe.Tag(), message(fe))
	}
	return out
}

func checkList[T any](name string, list []T) error {
	out := &Errors{}
	for i, entry := range list {
		out.merge(check(fmt.Sprintf("%s[%d].", name, i), entry))
	}
	return out.orNil()
}

// ValidatePersonalInfo checks the identity block. A nil value is accepted.
func ValidatePersonalInfo(p *types.PersonalInfo) error {
	if p == nil {
		return nil
	}
	return check("personalInfo.", *p).orNil()
}

// ValidateExperiences checks every experience entry.
func ValidateExperiences(list []types.ExperienceEntry) error {
	return checkList("experiences", list)
}

// ValidateEducation checks every education entry.
func ValidateEducation(list []types.EducationEntry) error {
	return checkList("education", list)
}

// ValidateProjects checks every project entry.
func ValidateProjects(list []types.ProjectEntry) error {
	return checkList("projects", list)
}

// ValidateSkills checks the flat skill list: at most MaxFlatSkills entries,
// none blank.
func ValidateSkills(skills []string) error {
	out := &Errors{}
	if len(skills) > MaxFlatSkills {
		out.add("skills", "max", fmt.Sprintf("Maximum %d compétences", MaxFlatSkills))
	}
	for i, s := range skills {
		if strings.TrimSpace(s) == "" {
			out.add(fmt.Sprintf("skills[%d]", i), "required", "La compétence ne peut pas être vide")
		}
	}
	return out.orNil()
}

// ValidateSkillCategories checks every category. Categories must hold at
// least one skill.
func ValidateSkillCategories(list []types.SkillCategory) error {
	return checkList("skillCategories", list)
}

// ValidateLanguages checks every language entry.
func ValidateLanguages(list []types.LanguageEntry) error {
	return checkList("languages", list)
}

// ValidateCertifications checks every certification entry.
func ValidateCertifications(list []types.CertificationEntry) error {
	return checkList("certifications", list)
}

// ValidateInterests checks every interest entry.
func ValidateInterests(list []types.InterestEntry) error {
	return checkList("interests", list)
}

// ValidateCV checks every slice and reports all rejected fields at once.
func ValidateCV(cv types.CVData) error {
	out := &Errors{}
	for _, err := range []error{
		ValidatePersonalInfo(cv.PersonalInfo),
		ValidateExperiences(cv.Experiences),
		ValidateEducation(cv.Education),
		ValidateProjects(cv.Projects),
		ValidateSkills(cv.Skills),
		ValidateSkillCategories(cv.SkillCategories),
		ValidateLanguages(cv.Languages),
		ValidateCertifications(cv.Certifications),
		ValidateInterests(cv.Interests),
	} {
		var verrs *Errors
		if errors.As(err, &verrs) {
			out.merge(verrs)
		}
	}
	return out.orNil()
}
