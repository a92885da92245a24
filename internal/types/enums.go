package types

// Professional statuses accepted in PersonalInfo.ProfessionalStatus.
const (
	StatusCDI        = "CDI"
	StatusCDD        = "CDD"
	StatusFreelance  = "Freelance"
	StatusStudent    = "Étudiant"
	StatusJobSeeking = "En recherche"
	StatusOther      = "Autre"
)

// ProfessionalStatuses lists the statuses in display order.
var ProfessionalStatuses = []string{
	StatusCDI, StatusCDD, StatusFreelance, StatusStudent, StatusJobSeeking, StatusOther,
}

// ContractTypes lists the contract types accepted in ExperienceEntry.ContractType.
var ContractTypes = []string{"CDI", "CDD", "Stage", "Freelance", "Alternance", "Autre"}

// CEFRLevels lists the Common European Framework levels.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// LevelNative marks a mother tongue.
const LevelNative = "Natif"

// LanguageLevels lists the levels accepted in LanguageEntry.Level.
var LanguageLevels = append(append([]string{}, CEFRLevels...), LevelNative)

// Skill categories.
const (
	SkillCategoryTechnical  = "Techniques"
	SkillCategoryMethods    = "Méthodologies"
	SkillCategoryLanguages  = "Langues"
	SkillCategorySoftSkills = "Soft Skills"
	SkillCategoryOther      = "Autres"
)

// SkillCategories lists the accepted skill categories.
var SkillCategories = []string{
	SkillCategoryTechnical, SkillCategoryMethods, SkillCategoryLanguages, SkillCategorySoftSkills, SkillCategoryOther,
}

// InterestCategories lists the accepted interest categories.
var InterestCategories = []string{
	"Sport", "Arts", "Voyages", "Bénévolat", "Associations", "Publications", "Brevets", "Autre",
}

// Contains reports whether value is one of the allowed values.
func Contains(allowed []string, value string) bool {
	for _, v := range allowed {
		if v == value {
			return true
		}
	}
	return false
}
