package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/cv-studio/internal/store"
	"github.com/jonathan/cv-studio/internal/types"
)

// Section names used in /api/cv/{slice}.
const (
	sectionPersonalInfo    = "personal-info"
	sectionExperiences     = "experiences"
	sectionEducation       = "education"
	sectionProjects        = "projects"
	sectionSkills          = "skills"
	sectionSkillCategories = "skill-categories"
	sectionLanguages       = "languages"
	sectionCertifications  = "certifications"
	sectionInterests       = "interests"
)

// section is one addressable part of the CV.
type section interface {
	get(cv types.CVData) any
	replace(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error)
}

// listSection is a section made of entries with stable IDs.
type listSection interface {
	section
	add(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error)
	update(w http.ResponseWriter, r *http.Request, st *store.Store, id string) (any, error)
	remove(st *store.Store, id string) error
	move(st *store.Store, id string, to int) error
}

// entries adapts one list of the CV to the generic entry operations.
type entries[T types.Identifiable] struct {
	name string
	list func(cv types.CVData) []T
	set  func(st *store.Store, list []T) error
	// withIDs returns the list with an ID on every entry and nested entry.
	withIDs func(list []T) []T
	// check, when set, rejects single entries the setter would drop.
	check func(entry T) error
}

func (e entries[T]) get(cv types.CVData) any {
	return e.list(cv)
}

func (e entries[T]) replace(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error) {
	var list []T
	if err := decodeJSON(w, r, &list); err != nil {
		return nil, err
	}
	list = e.withIDs(list)
	if err := e.set(st, list); err != nil {
		return nil, err
	}
	return e.list(st.Snapshot()), nil
}

func (e entries[T]) add(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error) {
	var entry T
	if err := decodeJSON(w, r, &entry); err != nil {
		return nil, err
	}
	if e.check != nil {
		if err := e.check(entry); err != nil {
			return nil, err
		}
	}
	if entry.EntryID() != "" && types.IndexOf(e.list(st.Snapshot()), entry.EntryID()) >= 0 {
		return nil, &ErrValidation{Field: "id", Message: "an entry with this id already exists"}
	}
	list := e.withIDs(types.AppendEntry(e.list(st.Snapshot()), entry))
	if err := e.set(st, list); err != nil {
		return nil, err
	}
	return list[len(list)-1], nil
}

func (e entries[T]) update(w http.ResponseWriter, r *http.Request, st *store.Store, id string) (any, error) {
	var entry T
	if err := decodeJSON(w, r, &entry); err != nil {
		return nil, err
	}
	switch entry.EntryID() {
	case id:
	case "":
		if err := withID(&entry, id); err != nil {
			return nil, err
		}
	default:
		return nil, &ErrValidation{Field: "id", Message: "does not match the entry being updated"}
	}
	if e.check != nil {
		if err := e.check(entry); err != nil {
			return nil, err
		}
	}
	list, ok := types.ReplaceEntry(e.list(st.Snapshot()), id, entry)
	if !ok {
		return nil, &ErrEntryNotFound{Slice: e.name, ID: id}
	}
	list = e.withIDs(list)
	if err := e.set(st, list); err != nil {
		return nil, err
	}
	return list[types.IndexOf(list, id)], nil
}

// withID sets the "id" field of a decoded entry, leaving the other fields as
// they are.
func withID[T any](entry *T, id string) error {
	data, err := json.Marshal(map[string]string{"id": id})
	if err != nil {
		return err
	}
	return json.Unmarshal(data, entry)
}

func (e entries[T]) remove(st *store.Store, id string) error {
	list, ok := types.RemoveEntry(e.list(st.Snapshot()), id)
	if !ok {
		return &ErrEntryNotFound{Slice: e.name, ID: id}
	}
	return e.set(st, list)
}

func (e entries[T]) move(st *store.Store, id string, to int) error {
	list := e.list(st.Snapshot())
	from := types.IndexOf(list, id)
	if from < 0 {
		return &ErrEntryNotFound{Slice: e.name, ID: id}
	}
	if to < 0 || to >= len(list) {
		return &ErrValidation{Field: "to", Message: "position out of range"}
	}
	return e.set(st, types.MoveEntry(list, from, to))
}

// personalInfoSection replaces the identity block. A JSON null clears it.
type personalInfoSection struct{}

func (personalInfoSection) get(cv types.CVData) any {
	return cv.PersonalInfo
}

func (personalInfoSection) replace(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error) {
	var info *types.PersonalInfo
	if err := decodeJSON(w, r, &info); err != nil {
		return nil, err
	}
	if err := st.SetPersonalInfo(info); err != nil {
		return nil, err
	}
	return st.Snapshot().PersonalInfo, nil
}

// skillsSection replaces the flat skill list.
type skillsSection struct{}

func (skillsSection) get(cv types.CVData) any {
	return cv.Skills
}

func (skillsSection) replace(w http.ResponseWriter, r *http.Request, st *store.Store) (any, error) {
	var skills []string
	if err := decodeJSON(w, r, &skills); err != nil {
		return nil, err
	}
	if err := st.SetSkills(skills); err != nil {
		return nil, err
	}
	return st.Snapshot().Skills, nil
}

var sections = map[string]section{
	sectionPersonalInfo: personalInfoSection{},
	sectionSkills:       skillsSection{},
	sectionExperiences: entries[types.ExperienceEntry]{
		name:    sectionExperiences,
		list:    func(cv types.CVData) []types.ExperienceEntry { return cv.Experiences },
		set:     (*store.Store).SetExperiences,
		withIDs: func(l []types.ExperienceEntry) []types.ExperienceEntry { return types.AssignMissingIDs(types.CVData{Experiences: l}).Experiences },
	},
	sectionEducation: entries[types.EducationEntry]{
		name:    sectionEducation,
		list:    func(cv types.CVData) []types.EducationEntry { return cv.Education },
		set:     (*store.Store).SetEducation,
		withIDs: func(l []types.EducationEntry) []types.EducationEntry { return types.AssignMissingIDs(types.CVData{Education: l}).Education },
	},
	sectionProjects: entries[types.ProjectEntry]{
		name:    sectionProjects,
		list:    func(cv types.CVData) []types.ProjectEntry { return cv.Projects },
		set:     (*store.Store).SetProjects,
		withIDs: func(l []types.ProjectEntry) []types.ProjectEntry { return types.AssignMissingIDs(types.CVData{Projects: l}).Projects },
	},
	sectionSkillCategories: entries[types.SkillCategory]{
		name:    sectionSkillCategories,
		list:    func(cv types.CVData) []types.SkillCategory { return cv.SkillCategories },
		set:     (*store.Store).SetSkillCategories,
		withIDs: func(l []types.SkillCategory) []types.SkillCategory { return types.AssignMissingIDs(types.CVData{SkillCategories: l}).SkillCategories },
		check:   checkCategoryHasSkills,
	},
	sectionLanguages: entries[types.LanguageEntry]{
		name:    sectionLanguages,
		list:    func(cv types.CVData) []types.LanguageEntry { return cv.Languages },
		set:     (*store.Store).SetLanguages,
		withIDs: func(l []types.LanguageEntry) []types.LanguageEntry { return types.AssignMissingIDs(types.CVData{Languages: l}).Languages },
	},
	sectionCertifications: entries[types.CertificationEntry]{
		name:    sectionCertifications,
		list:    func(cv types.CVData) []types.CertificationEntry { return cv.Certifications },
		set:     (*store.Store).SetCertifications,
		withIDs: func(l []types.CertificationEntry) []types.CertificationEntry { return types.AssignMissingIDs(types.CVData{Certifications: l}).Certifications },
	},
	sectionInterests: entries[types.InterestEntry]{
		name:    sectionInterests,
		list:    func(cv types.CVData) []types.InterestEntry { return cv.Interests },
		set:     (*store.Store).SetInterests,
		withIDs: func(l []types.InterestEntry) []types.InterestEntry { return types.AssignMissingIDs(types.CVData{Interests: l}).Interests },
	},
}

// checkCategoryHasSkills rejects a category without skills. The store drops
// such categories, so accepting one would report an entry that was never kept.
func checkCategoryHasSkills(c types.SkillCategory) error {
	if len(c.Skills) == 0 {
		return &ErrValidation{Field: "skills", Message: "a category needs at least one skill; delete the category instead"}
	}
	return nil
}

func lookupSection(name string) (section, error) {
	sec, ok := sections[name]
	if !ok {
		return nil, &ErrUnknownSlice{Name: name}
	}
	return sec, nil
}

func lookupList(name string) (listSection, error) {
	sec, err := lookupSection(name)
	if err != nil {
		return nil, err
	}
	list, ok := sec.(listSection)
	if !ok {
		return nil, &ErrNotAList{Slice: name}
	}
	return list, nil
}

// handleGetCV returns the whole CV with the template settings.
func (s *Server) handleGetCV(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.State())
}

// handleResetCV restores the illustrative CV and keeps the template settings.
func (s *Server) handleResetCV(w http.ResponseWriter, _ *http.Request) {
	s.store.ResetToDefaults()
	s.jsonResponse(w, http.StatusOK, s.store.State())
}

// handleClearCV empties every section and keeps the template settings.
func (s *Server) handleClearCV(w http.ResponseWriter, _ *http.Request) {
	s.store.ResetToEmpty()
	s.jsonResponse(w, http.StatusOK, s.store.State())
}

func (s *Server) handleGetSlice(w http.ResponseWriter, r *http.Request) {
	sec, err := lookupSection(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sec.get(s.store.Snapshot()))
}

// handleReplaceSlice replaces a section wholesale. Entries without an ID get
// one.
func (s *Server) handleReplaceSlice(w http.ResponseWriter, r *http.Request) {
	sec, err := lookupSection(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.editMu.Lock()
	out, err := sec.replace(w, r, s.store)
	s.editMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleAddEntry appends one entry to a list section and returns it with its
// ID.
func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	list, err := lookupList(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.editMu.Lock()
	out, err := list.add(w, r, s.store)
	s.editMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, out)
}

// handleUpdateEntry replaces one entry in place, keeping its position and ID.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	list, err := lookupList(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.editMu.Lock()
	out, err := list.update(w, r, s.store, r.PathValue("id"))
	s.editMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	list, err := lookupList(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.editMu.Lock()
	err = list.remove(s.store, r.PathValue("id"))
	s.editMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	To *int `json:"to"`
}

// handleMoveEntry moves an entry to a zero-based position in its list.
func (s *Server) handleMoveEntry(w http.ResponseWriter, r *http.Request) {
	list, err := lookupList(r.PathValue("slice"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.To == nil {
		s.writeError(w, &ErrValidation{Field: "to", Message: "is required"})
		return
	}

	s.editMu.Lock()
	err = list.move(s.store, r.PathValue("id"), *req.To)
	s.editMu.Unlock()
	if err != nil {
		s.writeError(w, err)
		return
	}
	sec, _ := lookupSection(r.PathValue("slice"))
	s.jsonResponse(w, http.StatusOK, sec.get(s.store.Snapshot()))
}

// handleRemoveSkill removes one skill from a category. A category left empty
// is removed with it.
func (s *Server) handleRemoveSkill(w http.ResponseWriter, r *http.Request) {
	categoryID, skillID := r.PathValue("id"), r.PathValue("skill_id")

	s.editMu.Lock()
	defer s.editMu.Unlock()

	categories := s.store.Snapshot().SkillCategories
	idx := types.IndexOf(categories, categoryID)
	if idx < 0 {
		s.writeError(w, &ErrEntryNotFound{Slice: sectionSkillCategories, ID: categoryID})
		return
	}
	if types.IndexOf(categories[idx].Skills, skillID) < 0 {
		s.writeError(w, &ErrEntryNotFound{Slice: "skills", ID: skillID})
		return
	}
	if err := s.store.SetSkillCategories(types.RemoveSkill(categories, categoryID, skillID)); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
