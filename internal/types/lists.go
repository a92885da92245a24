package types

import "github.com/google/uuid"

// Identifiable is implemented by every list entry that carries a stable ID.
type Identifiable interface {
	EntryID() string
}

// EntryID implements Identifiable.
func (e ExperienceEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e EducationEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e ProjectEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e LanguageEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e SkillCategory) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e SkillEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e CertificationEntry) EntryID() string { return e.ID }

// EntryID implements Identifiable.
func (e InterestEntry) EntryID() string { return e.ID }

// NewID returns a fresh stable identifier for a list entry.
func NewID() string {
	return uuid.NewString()
}

// AppendEntry returns a copy of list with entry appended at the end.
func AppendEntry[T any](list []T, entry T) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, list...)
	return append(out, entry)
}

// IndexOf returns the position of the entry with the given ID, or -1.
func IndexOf[T Identifiable](list []T, id string) int {
	for i, e := range list {
		if e.EntryID() == id {
			return i
		}
	}
	return -1
}

// ReplaceEntry returns a copy of list where the entry with the given ID is
// replaced. The second result is false when no entry has that ID.
func ReplaceEntry[T Identifiable](list []T, id string, entry T) ([]T, bool) {
	idx := IndexOf(list, id)
	if idx < 0 {
		return list, false
	}
	out := append([]T{}, list...)
	out[idx] = entry
	return out, true
}

// RemoveEntry returns a copy of list without the entry with the given ID.
func RemoveEntry[T Identifiable](list []T, id string) ([]T, bool) {
	idx := IndexOf(list, id)
	if idx < 0 {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:idx]...)
	return append(out, list[idx+1:]...), true
}

// MoveEntry returns a copy of list with the entry at from moved to position to.
// Out of range positions leave the order unchanged.
func MoveEntry[T any](list []T, from, to int) []T {
	out := append([]T{}, list...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]T{item}, out[to:]...)...)
	return out
}

// RemoveSkill removes a skill from a category. When the category loses its
// last skill the category itself is removed.
func RemoveSkill(categories []SkillCategory, categoryID, skillID string) []SkillCategory {
	out := make([]SkillCategory, 0, len(categories))
	for _, cat := range categories {
		if cat.ID != categoryID {
			out = append(out, cat)
			continue
		}
		skills, _ := RemoveEntry(cat.Skills, skillID)
		if len(skills) == 0 {
			continue
		}
		cat.Skills = skills
		out = append(out, cat)
	}
	return out
}

// PruneEmptyCategories drops every category that holds no skill.
func PruneEmptyCategories(categories []SkillCategory) []SkillCategory {
	out := make([]SkillCategory, 0, len(categories))
	for _, cat := range categories {
		if len(cat.Skills) > 0 {
			out = append(out, cat)
		}
	}
	return out
}

// AssignMissingIDs gives every entry without an ID a fresh one. It returns a
// new CV and leaves the argument untouched.
func AssignMissingIDs(cv CVData) CVData {
	out := cv.Clone()
	for i := range out.Experiences {
		if out.Experiences[i].ID == "" {
			out.Experiences[i].ID = NewID()
		}
	}
	for i := range out.Education {
		if out.Education[i].ID == "" {
			out.Education[i].ID = NewID()
		}
	}
	for i := range out.Projects {
		if out.Projects[i].ID == "" {
			out.Projects[i].ID = NewID()
		}
	}
	for i := range out.SkillCategories {
		if out.SkillCategories[i].ID == "" {
			out.SkillCategories[i].ID = NewID()
		}
		for j := range out.SkillCategories[i].Skills {
			if out.SkillCategories[i].Skills[j].ID == "" {
				out.SkillCategories[i].Skills[j].ID = NewID()
			}
		}
	}
	for i := range out.Languages {
		if out.Languages[i].ID == "" {
			out.Languages[i].ID = NewID()
		}
	}
	for i := range out.Certifications {
		if out.Certifications[i].ID == "" {
			out.Certifications[i].ID = NewID()
		}
	}
	for i := range out.Interests {
		if out.Interests[i].ID == "" {
			out.Interests[i].ID = NewID()
		}
	}
	return out
}
