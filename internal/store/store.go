// Package store holds the single authoritative CV and template selection of a
// session and notifies subscribers of every committed change.
package store

import (
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/jonathan/cv-studio/internal/types"
	"github.com/jonathan/cv-studio/internal/validation"
)

// Slice names the part of the state a commit replaced.
type Slice string

// Slices of the state.
const (
	SlicePersonalInfo    Slice = "personalInfo"
	SliceExperiences     Slice = "experiences"
	SliceEducation       Slice = "education"
	SliceProjects        Slice = "projects"
	SliceSkills          Slice = "skills"
	SliceSkillCategories Slice = "skillCategories"
	SliceLanguages       Slice = "languages"
	SliceCertifications  Slice = "certifications"
	SliceInterests       Slice = "interests"
	SliceTemplates       Slice = "templates"
	SliceAll             Slice = "all"
)

// State is the full session state. Its JSON form is the persistence envelope.
type State struct {
	CV        types.CVData           `json:"cv"`
	Templates types.TemplateSettings `json:"templates"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	return State{CV: s.CV.Clone(), Templates: s.Templates.Clone()}
}

// DefaultState returns the illustrative CV with the default template.
func DefaultState() State {
	return State{CV: types.DefaultCVData(), Templates: types.DefaultTemplateSettings()}
}

// Change is delivered to subscribers after each effective commit.
type Change struct {
	Slice Slice
	Seq   uint64
	State State
}

// Store is safe for concurrent use. Reads return deep copies; writes replace
// one slice wholesale.
type Store struct {
	mu    sync.RWMutex
	state State
	seq   uint64

	// notifyMu is taken before mu is released so that subscribers observe
	// changes in commit order.
	notifyMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[int]func(Change)
	nextSub int

	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for commit traces.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a store holding initial. Nil lists are normalized to empty ones
// and skill categories without skills are dropped.
func New(initial State, opts ...Option) *Store {
	st := initial.Clone()
	st.CV.Normalize()
	st.CV.SkillCategories = types.PruneEmptyCategories(st.CV.SkillCategories)
	s := &Store{
		state:  st,
		subs:   make(map[int]func(Change)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefault creates a store holding DefaultState.
func NewDefault(opts ...Option) *Store {
	return New(DefaultState(), opts...)
}

// Subscribe registers fn for every future change and returns a function that
// removes it. fn runs synchronously on the committing goroutine and must not
// commit to the store itself.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) subscribers() []func(Change) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Change), len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}

// commit applies mutate under the write lock. mutate reports whether the state
// changed; unchanged commits emit nothing.
func (s *Store) commit(slice Slice, mutate func(st *State) bool) {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return
	}
	s.seq++
	change := Change{Slice: slice, Seq: s.seq, State: s.state.Clone()}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.logger.Debug("state committed", "component", "store", "slice", string(slice), "seq", change.Seq)
	for _, fn := range s.subscribers() {
		fn(change)
	}
}

// detach copies caller-owned data into store-owned data with normalized lists.
func detach(cv types.CVData) types.CVData {
	out := cv.Clone()
	out.Normalize()
	return out
}

func replaceIfChanged[T any](dst *T, next T) bool {
	if reflect.DeepEqual(*dst, next) {
		return false
	}
	*dst = next
	return true
}

// SetPersonalInfo validates and replaces the identity block. Nil clears it.
func (s *Store) SetPersonalInfo(p *types.PersonalInfo) error {
	if err := validation.ValidatePersonalInfo(p); err != nil {
		return err
	}
	next := detach(types.CVData{PersonalInfo: p}).PersonalInfo
	s.commit(SlicePersonalInfo, func(st *State) bool {
		return replaceIfChanged(&st.CV.PersonalInfo, next)
	})
	return nil
}

// SetExperiences validates and replaces the experience list.
func (s *Store) SetExperiences(list []types.ExperienceEntry) error {
	if err := validation.ValidateExperiences(list); err != nil {
		return err
	}
	next := detach(types.CVData{Experiences: list}).Experiences
	s.commit(SliceExperiences, func(st *State) bool {
		return replaceIfChanged(&st.CV.Experiences, next)
	})
	return nil
}

// SetEducation validates and replaces the education list.
func (s *Store) SetEducation(list []types.EducationEntry) error {
	if err := validation.ValidateEducation(list); err != nil {
		return err
	}
	next := detach(types.CVData{Education: list}).Education
	s.commit(SliceEducation, func(st *State) bool {
		return replaceIfChanged(&st.CV.Education, next)
	})
	return nil
}

// SetProjects validates and replaces the project list.
func (s *Store) SetProjects(list []types.ProjectEntry) error {
	if err := validation.ValidateProjects(list); err != nil {
		return err
	}
	next := detach(types.CVData{Projects: list}).Projects
	s.commit(SliceProjects, func(st *State) bool {
		return replaceIfChanged(&st.CV.Projects, next)
	})
	return nil
}

// SetSkills validates and replaces the flat skill list.
func (s *Store) SetSkills(skills []string) error {
	if err := validation.ValidateSkills(skills); err != nil {
		return err
	}
	next := detach(types.CVData{Skills: skills}).Skills
	s.commit(SliceSkills, func(st *State) bool {
		return replaceIfChanged(&st.CV.Skills, next)
	})
	return nil
}

// SetSkillCategories drops emptied categories, then validates and replaces
// the categorized skill list.
func (s *Store) SetSkillCategories(list []types.SkillCategory) error {
	pruned := types.PruneEmptyCategories(list)
	if err := validation.ValidateSkillCategories(pruned); err != nil {
		return err
	}
	next := detach(types.CVData{SkillCategories: pruned}).SkillCategories
	s.commit(SliceSkillCategories, func(st *State) bool {
		return replaceIfChanged(&st.CV.SkillCategories, next)
	})
	return nil
}

// SetLanguages validates and replaces the language list.
func (s *Store) SetLanguages(list []types.LanguageEntry) error {
	if err := validation.ValidateLanguages(list); err != nil {
		return err
	}
	next := detach(types.CVData{Languages: list}).Languages
	s.commit(SliceLanguages, func(st *State) bool {
		return replaceIfChanged(&st.CV.Languages, next)
	})
	return nil
}

// SetCertifications validates and replaces the certification list.
func (s *Store) SetCertifications(list []types.CertificationEntry) error {
	if err := validation.ValidateCertifications(list); err != nil {
		return err
	}
	next := detach(types.CVData{Certifications: list}).Certifications
	s.commit(SliceCertifications, func(st *State) bool {
		return replaceIfChanged(&st.CV.Certifications, next)
	})
	return nil
}

// SetInterests validates and replaces the interest list.
func (s *Store) SetInterests(list []types.InterestEntry) error {
	if err := validation.ValidateInterests(list); err != nil {
		return err
	}
	next := detach(types.CVData{Interests: list}).Interests
	s.commit(SliceInterests, func(st *State) bool {
		return replaceIfChanged(&st.CV.Interests, next)
	})
	return nil
}

// SelectTemplate stores key as-is. Unknown keys are resolved to the default
// template when rendering.
func (s *Store) SelectTemplate(key string) {
	s.commit(SliceTemplates, func(st *State) bool {
		return replaceIfChanged(&st.Templates.SelectedTemplate, key)
	})
}

// SetCustomColors replaces the custom palette. Nil restores template colors.
func (s *Store) SetCustomColors(colors *types.CustomColors) {
	var next *types.CustomColors
	if colors != nil {
		c := *colors
		next = &c
	}
	s.commit(SliceTemplates, func(st *State) bool {
		return replaceIfChanged(&st.Templates.CustomColors, next)
	})
}

// ResetToDefaults replaces the CV with the illustrative defaults. The template
// selection is kept.
func (s *Store) ResetToDefaults() {
	next := types.DefaultCVData()
	s.commit(SliceAll, func(st *State) bool {
		return replaceIfChanged(&st.CV, next)
	})
}

// ResetToEmpty replaces the CV with an empty one. The template selection is
// kept.
func (s *Store) ResetToEmpty() {
	next := types.EmptyCVData()
	s.commit(SliceAll, func(st *State) bool {
		return replaceIfChanged(&st.CV, next)
	})
}

// Replace installs a whole state without validation, e.g. one loaded from
// storage. Lists are normalized and empty skill categories dropped.
func (s *Store) Replace(state State) {
	next := state.Clone()
	next.CV.Normalize()
	next.CV.SkillCategories = types.PruneEmptyCategories(next.CV.SkillCategories)
	s.commit(SliceAll, func(st *State) bool {
		return replaceIfChanged(st, next)
	})
}

// Snapshot returns a deep copy of the current CV.
func (s *Store) Snapshot() types.CVData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.CV.Clone()
}

// State returns a deep copy of the full state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// SelectedTemplate returns the stored template key.
func (s *Store) SelectedTemplate() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Templates.SelectedTemplate
}

// Seq returns the number of effective commits so far.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}
