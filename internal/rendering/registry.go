package rendering

import (
	"sort"

	"github.com/jonathan/cv-studio/internal/types"
)

// SkillSource names which of the two skill representations a template reads.
type SkillSource string

const (
	// SkillsFlat reads CVData.Skills.
	SkillsFlat SkillSource = "skills"
	// SkillsCategorized reads CVData.SkillCategories.
	SkillsCategorized SkillSource = "skillCategories"
)

// Template describes a registered layout.
type Template struct {
	Key         string      `json:"key"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Layout      string      `json:"layout"`
	SkillSource SkillSource `json:"skillSource"`
	// Present labels an open-ended experience, Ongoing an open-ended
	// education entry.
	Present string `json:"-"`
	Ongoing string `json:"-"`
	// Order places the template in listings.
	Order int `json:"-"`
}

var registry = map[string]Template{
	"minimal": {
		Key: "minimal", Name: "Minimal", Order: 1,
		Description: "Une colonne sobre, sans couleur",
		Layout:      "single-column", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"modern": {
		Key: "modern", Name: "Moderne", Order: 2,
		Description: "Bandeau coloré et cartes d'expérience",
		Layout:      "single-column", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"creative": {
		Key: "creative", Name: "Créatif", Order: 3,
		Description: "En-tête centré et parcours en frise",
		Layout:      "single-column", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"model1": {
		Key: "model1", Name: "Professionnel Classique", Order: 4,
		Description: "Colonne latérale et contenu principal, intitulés en anglais",
		Layout:      "sidebar", SkillSource: SkillsFlat,
		Present: "present", Ongoing: "present",
	},
	"model2": {
		Key: "model2", Name: "Moderne Élégant", Order: 5,
		Description: "Bandeau, contenu principal et colonne de droite",
		Layout:      "grid", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"model3": {
		Key: "model3", Name: "Créatif Dynamique", Order: 6,
		Description: "Dégradés et avatar à initiales",
		Layout:      "single-column", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"model4": {
		Key: "model4", Name: "Corporate", Order: 7,
		Description: "Sections pleine largeur et grille à deux colonnes",
		Layout:      "grid", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"model5": {
		Key: "model5", Name: "Tech Minimaliste", Order: 8,
		Description: "Police à chasse fixe et compétences par catégorie",
		Layout:      "single-column", SkillSource: SkillsCategorized,
		Present: "now", Ongoing: "now",
	},
	"model6": {
		Key: "model6", Name: "Sidebar", Order: 9,
		Description: "Colonne latérale sombre avec niveaux de compétence",
		Layout:      "sidebar", SkillSource: SkillsCategorized,
		Present: "Présent", Ongoing: "En cours",
	},
	"model7": {
		Key: "model7", Name: "Timeline", Order: 10,
		Description: "Parcours en frise et grille de compétences",
		Layout:      "grid", SkillSource: SkillsFlat,
		Present: "Présent", Ongoing: "En cours",
	},
	"model8": {
		Key: "model8", Name: "Magazine", Order: 11,
		Description: "Mise en page éditoriale en grille",
		Layout:      "grid", SkillSource: SkillsFlat,
		Present: "PRÉSENT", Ongoing: "En cours",
	},
	"model9": {
		Key: "model9", Name: "Elegant Serif", Order: 12,
		Description: "Typographie à empattements, centrée",
		Layout:      "grid", SkillSource: SkillsCategorized,
		Present: "Présent", Ongoing: "En cours",
	},
}

// Lookup returns the template registered under key, falling back to the
// default template for unknown or empty keys. The boolean reports whether key
// itself was found.
func Lookup(key string) (Template, bool) {
	if t, ok := registry[key]; ok {
		return t, true
	}
	return registry[types.DefaultTemplate], false
}

// Has reports whether key is a registered template.
func Has(key string) bool {
	_, ok := registry[key]
	return ok
}

// Templates returns every registered template in display order.
func Templates() []Template {
	out := make([]Template, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Keys returns every registered key in display order.
func Keys() []string {
	templates := Templates()
	keys := make([]string, len(templates))
	for i, t := range templates {
		keys[i] = t.Key
	}
	return keys
}
