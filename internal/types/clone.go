package types

// Clone returns a deep copy of the CV. Renderers receive clones so that no
// template can observe or cause a write to the store's copy.
func (c CVData) Clone() CVData {
	out := CVData{
		Skills: cloneStrings(c.Skills),
	}
	if c.PersonalInfo != nil {
		p := c.PersonalInfo.Clone()
		out.PersonalInfo = &p
	}
	if c.Experiences != nil {
		out.Experiences = make([]ExperienceEntry, len(c.Experiences))
		for i, e := range c.Experiences {
			out.Experiences[i] = e.Clone()
		}
	}
	if c.Education != nil {
		out.Education = make([]EducationEntry, len(c.Education))
		for i, e := range c.Education {
			e.RelevantCourses = cloneStrings(e.RelevantCourses)
			out.Education[i] = e
		}
	}
	if c.Projects != nil {
		out.Projects = make([]ProjectEntry, len(c.Projects))
		for i, p := range c.Projects {
			p.Technologies = cloneStrings(p.Technologies)
			p.Images = cloneStrings(p.Images)
			out.Projects[i] = p
		}
	}
	if c.SkillCategories != nil {
		out.SkillCategories = make([]SkillCategory, len(c.SkillCategories))
		for i, cat := range c.SkillCategories {
			out.SkillCategories[i] = cat.Clone()
		}
	}
	if c.Languages != nil {
		out.Languages = make([]LanguageEntry, len(c.Languages))
		for i, l := range c.Languages {
			if l.DetailedAssessment != nil {
				a := *l.DetailedAssessment
				l.DetailedAssessment = &a
			}
			out.Languages[i] = l
		}
	}
	if c.Certifications != nil {
		out.Certifications = make([]CertificationEntry, len(c.Certifications))
		for i, cert := range c.Certifications {
			cert.AssociatedSkills = cloneStrings(cert.AssociatedSkills)
			out.Certifications[i] = cert
		}
	}
	if c.Interests != nil {
		out.Interests = append([]InterestEntry{}, c.Interests...)
	}
	return out
}

// Clone returns a deep copy of the personal info.
func (p PersonalInfo) Clone() PersonalInfo {
	if p.Location != nil {
		loc := *p.Location
		p.Location = &loc
	}
	if p.SocialLinks != nil {
		links := *p.SocialLinks
		if links.Other != nil {
			links.Other = append([]OtherLink{}, links.Other...)
		}
		p.SocialLinks = &links
	}
	p.Keywords = cloneStrings(p.Keywords)
	return p
}

// Clone returns a deep copy of the experience entry.
func (e ExperienceEntry) Clone() ExperienceEntry {
	e.Achievements = cloneStrings(e.Achievements)
	e.Technologies = cloneStrings(e.Technologies)
	if e.Projects != nil {
		e.Projects = append([]ExperienceProject{}, e.Projects...)
	}
	return e
}

// Clone returns a deep copy of the category and its skills.
func (c SkillCategory) Clone() SkillCategory {
	if c.Skills == nil {
		return c
	}
	skills := make([]SkillEntry, len(c.Skills))
	for i, s := range c.Skills {
		if s.Level != nil {
			v := *s.Level
			s.Level = &v
		}
		if s.YearsOfExperience != nil {
			v := *s.YearsOfExperience
			s.YearsOfExperience = &v
		}
		skills[i] = s
	}
	c.Skills = skills
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}
