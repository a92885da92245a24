package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// requiredMessages maps "<scope>.<field>" to the message shown when the field
// is missing. The scope is the root type name or the enclosing list name.
var requiredMessages = map[string]string{
	"PersonalInfo.fullName":      "Le nom complet est requis",
	"PersonalInfo.email":         "L'adresse email est requise",
	"ExperienceEntry.role":       "Poste requis",
	"ExperienceEntry.company":    "Entreprise requise",
	"projects.name":              "Nom du projet requis",
	"EducationEntry.degree":      "Diplôme requis",
	"EducationEntry.institution": "Établissement requis",
	"ProjectEntry.name":          "Nom du projet requis",
	"LanguageEntry.language":     "Langue requise",
	"LanguageEntry.level":        "Niveau requis",
	"SkillCategory.category":     "Catégorie requise",
	"skills.name":                "Nom de la compétence requis",
	"CertificationEntry.name":    "Nom de la certification requis",
	"CertificationEntry.issuer":  "Organisme certificateur requis",
	"InterestEntry.category":     "Catégorie requise",
	"InterestEntry.title":        "Titre requis",
	"other.url":                  "URL requise",
}

// fieldLabels names string fields in length messages.
var fieldLabels = map[string]string{
	"fullName":        "Le nom",
	"title":           "Le titre",
	"summary":         "Le résumé",
	"careerObjective": "L'objectif de carrière",
}

var enumMessages = map[string]string{
	"professional_status": "Statut professionnel invalide",
	"contract_type":       "Type de contrat invalide",
	"cefr":                "Niveau CECRL invalide",
	"language_level":      "Niveau de langue invalide",
	"skill_category":      "Catégorie de compétence invalide",
	"interest_category":   "Catégorie d'intérêt invalide",
}

// scopeOf returns the scope of a namespace such as
// "SkillCategory.skills[0].name": the enclosing list name when nested,
// otherwise the root type name.
func scopeOf(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) < 2 {
		return namespace
	}
	parent := parts[len(parts)-2]
	if idx := strings.Index(parent, "["); idx >= 0 {
		parent = parent[:idx]
	}
	return parent
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	scope := scopeOf(fe.Namespace())

	switch fe.Tag() {
	case "required":
		if msg, ok := requiredMessages[scope+"."+field]; ok {
			return msg
		}
		return "Ce champ est requis"
	case "min", "max":
		return boundMessage(fe, scope)
	case "email":
		return "Adresse email invalide"
	case "url":
		return "URL invalide"
	case "phone":
		return "Numéro de téléphone invalide"
	case "yearmonth":
		return "Date invalide (format AAAA-MM ou AAAA)"
	case "daterange":
		if field == "expiryDate" {
			return "La date d'expiration doit être postérieure à la date d'obtention"
		}
		return "La date de fin doit être postérieure à la date de début"
	}
	if msg, ok := enumMessages[fe.Tag()]; ok {
		return msg
	}
	return fmt.Sprintf("Valeur invalide (%s)", fe.Tag())
}

func boundMessage(fe validator.FieldError, scope string) string {
	field := fe.Field()
	switch fe.Kind() {
	case reflect.String:
		label, ok := fieldLabels[field]
		if !ok {
			label = "Ce champ"
		}
		if fe.Tag() == "min" {
			return fmt.Sprintf("%s doit contenir au moins %s caractères", label, fe.Param())
		}
		return fmt.Sprintf("%s ne doit pas dépasser %s caractères", label, fe.Param())
	case reflect.Slice:
		if scope == "SkillCategory" && field == "skills" {
			return "Au moins une compétence requise"
		}
		return fmt.Sprintf("Nombre d'éléments invalide (%s %s)", fe.Tag(), fe.Param())
	default:
		if field == "level" {
			return "Le niveau doit être compris entre 1 et 5"
		}
		if field == "yearsOfExperience" {
			return "Le nombre d'années ne peut pas être négatif"
		}
		return fmt.Sprintf("Valeur hors limites (%s %s)", fe.Tag(), fe.Param())
	}
}
