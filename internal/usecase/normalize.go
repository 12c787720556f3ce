package usecase

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// cityAliases maps normalized colloquial names to the normalized official name.
// Keys are unique, so an alias can never point at two cities.
var cityAliases = map[string]string{
	"спб":              "санкт-петербург",
	"питер":            "санкт-петербург",
	"санкт петербург":  "санкт-петербург",
	"с-петербург":      "санкт-петербург",
	"saint petersburg": "санкт-петербург",
	"st petersburg":    "санкт-петербург",
	"мск":              "москва",
	"moscow":           "москва",
	"екб":              "екатеринбург",
	"екат":             "екатеринбург",
	"нн":               "нижний новгород",
	"нижний":           "нижний новгород",
	"н.новгород":       "нижний новгород",
	"kazan":            "казань",
	"нск":              "новосибирск",
	"новосиб":          "новосибирск",
}

// localityPrefixes are stripped from the front of a name ("г. Казань").
var localityPrefixes = []string{"город", "г.", "г"}

// NormalizeName canonicalizes a place name for comparison: NFC, case folding,
// whitespace collapsing, ё→е, locality prefix removal and alias substitution.
func NormalizeName(name string) string {
	s := norm.NFC.String(name)
	s = cases.Fold().String(s)
	s = strings.ReplaceAll(s, "ё", "е")

	fields := strings.Fields(s)
	if len(fields) > 1 {
		for _, p := range localityPrefixes {
			if fields[0] == p {
				fields = fields[1:]
				break
			}
		}
	}
	if len(fields) > 0 && strings.HasPrefix(fields[0], "г.") && len(fields[0]) > len("г.") {
		fields[0] = strings.TrimPrefix(fields[0], "г.")
	}
	s = strings.Join(fields, " ")

	if canonical, ok := cityAliases[s]; ok {
		return canonical
	}
	return s
}

// IsLocationCode reports whether the input is already a provider location
// code: all ASCII digits, or a hyphenated UUID.
func IsLocationCode(s string) bool {
	if s == "" {
		return false
	}
	if allDigits(s) {
		return true
	}
	return len(s) == 36 && uuid.Validate(s) == nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
