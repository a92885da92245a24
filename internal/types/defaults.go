package types

// DefaultCVData returns the illustrative CV used when a session starts, so
// that the preview is never blank. Every call returns a fresh copy.
func DefaultCVData() CVData {
	return CVData{
		PersonalInfo: &PersonalInfo{
			FullName: "Jean Dupont",
			Title:    "Développeur Full Stack",
			Email:    "jean.dupont@example.com",
			Phone:    "+33 6 12 34 56 78",
			Location: &Location{
				City:       "Paris",
				Country:    "France",
				PostalCode: "75001",
			},
			SocialLinks: &SocialLinks{
				LinkedIn:  "https://linkedin.com/in/jeandupont",
				GitHub:    "https://github.com/jeandupont",
				Portfolio: "https://jeandupont.dev",
			},
			Summary:            "Développeur Full Stack passionné avec 5 ans d'expérience dans la création d'applications web modernes. Expertise en React, Node.js et TypeScript. Capacité démontrée à livrer des solutions innovantes et performantes.",
			ProfessionalStatus: StatusJobSeeking,
		},
		Experiences: []ExperienceEntry{
			{
				ID:           "1",
				Role:         "Développeur Full Stack Senior",
				Company:      "TechCorp",
				Location:     "Paris, France",
				StartDate:    "2021-03",
				Current:      true,
				ContractType: "CDI",
				Description:  "Développement d'applications web complexes pour des clients internationaux",
				Achievements: []string{
					"Réduction du temps de chargement de 40% grâce à l'optimisation du code",
					"Migration réussie de l'application vers React 18",
					"Mentorat de 3 développeurs juniors",
				},
				Technologies: []string{"React", "TypeScript", "Node.js", "PostgreSQL", "AWS"},
			},
			{
				ID:           "2",
				Role:         "Développeur Frontend",
				Company:      "StartupXYZ",
				Location:     "Lyon, France",
				StartDate:    "2019-06",
				EndDate:      "2021-02",
				ContractType: "CDD",
				Description:  "Création d'interfaces utilisateur modernes et responsives",
				Achievements: []string{
					"Développement de 15+ composants réutilisables",
					"Amélioration de l'accessibilité (WCAG 2.1)",
				},
				Technologies: []string{"React", "JavaScript", "CSS3", "Redux"},
			},
		},
		Education: []EducationEntry{
			{
				ID:             "1",
				Degree:         "Master en Informatique",
				Institution:    "Université Paris-Saclay",
				Location:       "Paris, France",
				StartDate:      "2017-09",
				EndDate:        "2019-06",
				Honors:         "Mention Bien",
				Specialization: "Développement Web et Mobile",
			},
			{
				ID:          "2",
				Degree:      "Licence en Informatique",
				Institution: "Université de Lyon",
				Location:    "Lyon, France",
				StartDate:   "2014-09",
				EndDate:     "2017-06",
			},
		},
		Projects: []ProjectEntry{
			{
				ID:           "1",
				Name:         "Générateur de CV",
				Description:  "Application React pour créer des CV professionnels avec export PDF",
				Technologies: []string{"React", "TypeScript", "TailwindCSS", "Redux"},
				Role:         "Développeur Principal",
				GitHub:       "https://github.com/jeandupont/cv-generator",
			},
			{
				ID:           "2",
				Name:         "E-commerce Platform",
				Description:  "Plateforme e-commerce complète avec paiement en ligne",
				Technologies: []string{"Next.js", "Node.js", "Stripe", "MongoDB"},
				Role:         "Full Stack Developer",
			},
		},
		Skills: []string{},
		SkillCategories: []SkillCategory{
			{
				ID:       "1",
				Category: SkillCategoryTechnical,
				Skills: []SkillEntry{
					{ID: "1", Name: "React", Level: intPtr(5), YearsOfExperience: intPtr(5)},
					{ID: "2", Name: "TypeScript", Level: intPtr(5), YearsOfExperience: intPtr(4)},
					{ID: "3", Name: "Node.js", Level: intPtr(4), YearsOfExperience: intPtr(5)},
					{ID: "4", Name: "PostgreSQL", Level: intPtr(4), YearsOfExperience: intPtr(3)},
					{ID: "5", Name: "MongoDB", Level: intPtr(3), YearsOfExperience: intPtr(2)},
				},
			},
			{
				ID:       "2",
				Category: SkillCategoryMethods,
				Skills: []SkillEntry{
					{ID: "6", Name: "Agile/Scrum", Level: intPtr(5)},
					{ID: "7", Name: "TDD", Level: intPtr(4)},
					{ID: "8", Name: "CI/CD", Level: intPtr(4)},
				},
			},
		},
		Languages: []LanguageEntry{
			{ID: "1", Language: "Français", LanguageCode: "fr", Level: LevelNative},
			{ID: "2", Language: "Anglais", LanguageCode: "en", Level: "C1", Certified: true, CertificateName: "TOEIC"},
			{ID: "3", Language: "Espagnol", LanguageCode: "es", Level: "B1"},
		},
		Certifications: []CertificationEntry{
			{
				ID:           "1",
				Name:         "AWS Certified Developer",
				Issuer:       "Amazon Web Services",
				IssueDate:    "2023-06",
				CredentialID: "AWS-123456",
			},
			{
				ID:        "2",
				Name:      "React Advanced Certification",
				Issuer:    "Meta",
				IssueDate: "2022-11",
			},
		},
		Interests: []InterestEntry{
			{ID: "1", Category: "Sport", Title: "Course à pied", Description: "Marathon de Paris 2023"},
			{ID: "2", Category: "Bénévolat", Title: "Mentorat de jeunes développeurs", Description: "Bénévole chez Code.org"},
		},
	}
}

func intPtr(v int) *int { return &v }

// IntPtr returns a pointer to v, for optional numeric fields.
func IntPtr(v int) *int { return intPtr(v) }
