// Package types provides type definitions for the CV document model shared by
// the store, the validators, the renderer and the persistence layer.
//
//nolint:revive // types is a standard Go package name pattern
package types

// CVData is the aggregate root of a CV. The list fields are always non-nil
// after Normalize; PersonalInfo is nil when no identity has been entered.
//
// Skills and SkillCategories are two independent representations: templates
// that only show skill names read Skills, templates that show grouping and
// levels read SkillCategories.
type CVData struct {
	PersonalInfo    *PersonalInfo        `json:"personalInfo,omitempty"`
	Experiences     []ExperienceEntry    `json:"experiences"`
	Education       []EducationEntry     `json:"education"`
	Projects        []ProjectEntry       `json:"projects"`
	Skills          []string             `json:"skills"`
	SkillCategories []SkillCategory      `json:"skillCategories"`
	Languages       []LanguageEntry      `json:"languages"`
	Certifications  []CertificationEntry `json:"certifications"`
	Interests       []InterestEntry      `json:"interests"`
}

// PersonalInfo holds the identity and contact details of the CV subject.
type PersonalInfo struct {
	FullName           string       `json:"fullName" validate:"required,min=2,max=50"`
	Title              string       `json:"title,omitempty" validate:"omitempty,max=100"`
	ProfileImage       string       `json:"profileImage,omitempty"` // data URL or remote URL
	Email              string       `json:"email" validate:"required,email"`
	Phone              string       `json:"phone,omitempty" validate:"omitempty,phone"`
	Location           *Location    `json:"location,omitempty"`
	SocialLinks        *SocialLinks `json:"socialLinks,omitempty"`
	DateOfBirth        string       `json:"dateOfBirth,omitempty"`
	DrivingLicense     bool         `json:"drivingLicense,omitempty"`
	Summary            string       `json:"summary,omitempty" validate:"omitempty,min=50,max=1500"`
	CareerObjective    string       `json:"careerObjective,omitempty" validate:"omitempty,max=500"`
	Keywords           []string     `json:"keywords,omitempty"`
	ProfessionalStatus string       `json:"professionalStatus,omitempty" validate:"omitempty,professional_status"`
}

// Location is a structured postal location.
type Location struct {
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
}

// SocialLinks groups the subject's public profiles.
type SocialLinks struct {
	LinkedIn  string      `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub    string      `json:"github,omitempty" validate:"omitempty,url"`
	Portfolio string      `json:"portfolio,omitempty" validate:"omitempty,url"`
	Other     []OtherLink `json:"other,omitempty" validate:"dive"`
}

// OtherLink is a free-form labelled link.
type OtherLink struct {
	Label string `json:"label"`
	URL   string `json:"url" validate:"required,url"`
}

// ExperienceEntry is one employment or engagement record.
type ExperienceEntry struct {
	ID           string              `json:"id,omitempty"`
	Role         string              `json:"role" validate:"required"`
	Company      string              `json:"company" validate:"required"`
	Location     string              `json:"location,omitempty"`
	StartDate    string              `json:"startDate,omitempty" validate:"omitempty,yearmonth"`
	EndDate      string              `json:"endDate,omitempty" validate:"omitempty,yearmonth"`
	Current      bool                `json:"current,omitempty"`
	ContractType string              `json:"contractType,omitempty" validate:"omitempty,contract_type"`
	Description  string              `json:"description,omitempty"`
	Achievements []string            `json:"achievements,omitempty"`
	Technologies []string            `json:"technologies,omitempty"`
	Projects     []ExperienceProject `json:"projects,omitempty" validate:"dive"`
	CompanyLogo  string              `json:"companyLogo,omitempty"`
}

// ExperienceProject is a lightweight project attached to an experience.
type ExperienceProject struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// EducationEntry is one qualification record.
type EducationEntry struct {
	ID              string   `json:"id,omitempty"`
	Degree          string   `json:"degree" validate:"required"`
	Institution     string   `json:"institution" validate:"required"`
	Location        string   `json:"location,omitempty"`
	StartDate       string   `json:"startDate,omitempty" validate:"omitempty,yearmonth"`
	EndDate         string   `json:"endDate,omitempty" validate:"omitempty,yearmonth"`
	Current         bool     `json:"current,omitempty"`
	Honors          string   `json:"honors,omitempty"`
	Specialization  string   `json:"specialization,omitempty"`
	Thesis          string   `json:"thesis,omitempty"`
	RelevantCourses []string `json:"relevantCourses,omitempty"`
	Description     string   `json:"description,omitempty"`
	GPA             string   `json:"gpa,omitempty"`
}

// ProjectEntry is a portfolio project.
type ProjectEntry struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Role         string   `json:"role,omitempty"`
	URL          string   `json:"url,omitempty"`
	GitHub       string   `json:"github,omitempty"`
	Images       []string `json:"images,omitempty"`
	StartDate    string   `json:"startDate,omitempty" validate:"omitempty,yearmonth"`
	EndDate      string   `json:"endDate,omitempty" validate:"omitempty,yearmonth"`
}

// LanguageEntry is a spoken language with its CEFR level.
type LanguageEntry struct {
	ID                 string              `json:"id,omitempty"`
	Language           string              `json:"language" validate:"required"`
	LanguageCode       string              `json:"languageCode,omitempty"`
	Level              string              `json:"level" validate:"required,language_level"`
	DetailedAssessment *LanguageAssessment `json:"detailedAssessment,omitempty"`
	Certified          bool                `json:"certified,omitempty"`
	CertificateName    string              `json:"certificateName,omitempty"`
	CertificateURL     string              `json:"certificateUrl,omitempty"`
}

// LanguageAssessment breaks a language level down per competence.
type LanguageAssessment struct {
	Listening string `json:"listening,omitempty" validate:"omitempty,cefr"`
	Speaking  string `json:"speaking,omitempty" validate:"omitempty,cefr"`
	Reading   string `json:"reading,omitempty" validate:"omitempty,cefr"`
	Writing   string `json:"writing,omitempty" validate:"omitempty,cefr"`
}

// SkillEntry is one skill inside a SkillCategory.
type SkillEntry struct {
	ID                string `json:"id,omitempty"`
	Name              string `json:"name" validate:"required"`
	Level             *int   `json:"level,omitempty" validate:"omitempty,min=1,max=5"`
	YearsOfExperience *int   `json:"yearsOfExperience,omitempty" validate:"omitempty,min=0"`
	LastUsed          string `json:"lastUsed,omitempty"`
}

// SkillCategory groups at least one skill under a fixed category.
type SkillCategory struct {
	ID                 string       `json:"id,omitempty"`
	Category           string       `json:"category" validate:"required,skill_category"`
	CustomCategoryName string       `json:"customCategoryName,omitempty"`
	Skills             []SkillEntry `json:"skills" validate:"min=1,dive"`
}

// DisplayName returns the custom name for "Autres" categories when one is set.
func (c SkillCategory) DisplayName() string {
	if c.Category == SkillCategoryOther && c.CustomCategoryName != "" {
		return c.CustomCategoryName
	}
	return c.Category
}

// CertificationEntry is a certification or continuing-education record.
type CertificationEntry struct {
	ID               string   `json:"id,omitempty"`
	Name             string   `json:"name" validate:"required"`
	Issuer           string   `json:"issuer" validate:"required"`
	IssueDate        string   `json:"issueDate,omitempty" validate:"omitempty,yearmonth"`
	ExpiryDate       string   `json:"expiryDate,omitempty" validate:"omitempty,yearmonth"`
	CredentialID     string   `json:"credentialId,omitempty"`
	VerificationURL  string   `json:"verificationUrl,omitempty" validate:"omitempty,url"`
	AssociatedSkills []string `json:"associatedSkills,omitempty"`
}

// InterestEntry is a hobby, publication or other personal interest.
type InterestEntry struct {
	ID          string `json:"id,omitempty"`
	Category    string `json:"category" validate:"required,interest_category"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
}

// EmptyCVData returns a CV with every list empty and no personal info.
func EmptyCVData() CVData {
	cv := CVData{}
	cv.Normalize()
	return cv
}

// Normalize replaces nil lists with empty lists so the aggregate always
// serializes with array values.
func (c *CVData) Normalize() {
	if c.Experiences == nil {
		c.Experiences = []ExperienceEntry{}
	}
	if c.Education == nil {
		c.Education = []EducationEntry{}
	}
	if c.Projects == nil {
		c.Projects = []ProjectEntry{}
	}
	if c.Skills == nil {
		c.Skills = []string{}
	}
	if c.SkillCategories == nil {
		c.SkillCategories = []SkillCategory{}
	}
	if c.Languages == nil {
		c.Languages = []LanguageEntry{}
	}
	if c.Certifications == nil {
		c.Certifications = []CertificationEntry{}
	}
	if c.Interests == nil {
		c.Interests = []InterestEntry{}
	}
}
