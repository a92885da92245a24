package rendering

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-studio/internal/types"
)

// PlaceholderName is shown when the CV has no personal info.
const PlaceholderName = "Votre Nom"

// MaxSkillLevel is the top of the skill level scale.
const MaxSkillLevel = 5

// DateRange formats a period as "start - end". A current period, or one with a
// start but no end, is open-ended and shows the present label instead of any
// stored end date. Dates are shown as entered.
func DateRange(start, end string, current bool, present string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if current || (end == "" && start != "") {
		if start == "" {
			return present
		}
		return start + " - " + present
	}
	return JoinNonEmpty(" - ", start, end)
}

// JoinNonEmpty joins the non-blank parts with sep, so a single remaining part
// carries no separator.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// FormatLocation renders a location as "city postalCode, country".
func FormatLocation(loc *types.Location) string {
	if loc == nil {
		return ""
	}
	return JoinNonEmpty(", ", JoinNonEmpty(" ", loc.City, loc.PostalCode), loc.Country)
}

// Initials returns up to two uppercase initials of name.
func Initials(name string) string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(name) {
		r := []rune(word)[0]
		if !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if n++; n == 2 {
			break
		}
	}
	return b.String()
}

// SkillDots returns MaxSkillLevel flags, the first level of them set. Levels
// outside the scale are clamped.
func SkillDots(level int) []bool {
	if level < 0 {
		level = 0
	}
	if level > MaxSkillLevel {
		level = MaxSkillLevel
	}
	dots := make([]bool, MaxSkillLevel)
	for i := 0; i < level; i++ {
		dots[i] = true
	}
	return dots
}

var skillLevelLabels = [...]string{"Débutant", "Intermédiaire", "Confirmé", "Avancé", "Expert"}

// SkillLevelLabel names a 1-5 skill level, or returns "" outside the scale.
func SkillLevelLabel(level int) string {
	if level < 1 || level > MaxSkillLevel {
		return ""
	}
	return skillLevelLabels[level-1]
}

var languageLevelLabels = map[string]string{
	"A1":              "Débutant",
	"A2":              "Élémentaire",
	"B1":              "Intermédiaire",
	"B2":              "Intermédiaire avancé",
	"C1":              "Avancé",
	"C2":              "Maîtrise",
	types.LevelNative: "Langue maternelle",
}

// LanguageLevelLabel describes a CEFR level, e.g. "C1 - Avancé". Unknown
// levels are returned unchanged.
func LanguageLevelLabel(level string) string {
	label, ok := languageLevelLabels[level]
	if !ok {
		return level
	}
	if level == types.LevelNative {
		return label
	}
	return level + " - " + label
}
