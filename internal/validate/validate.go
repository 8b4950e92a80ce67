// Package validate implements deterministic, per-field normalization and
// validation for the four demographic fields. All functions are pure: no
// I/O, no network, same output for the same input.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/schemebot/schemebot/internal/models"
)

var (
	latinNamePattern = regexp.MustCompile(`[^a-zA-Z\s'\-]`)
	devanagariRange  = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x0900, Hi: 0x097F, Stride: 1}}}
	digitRunPattern  = regexp.MustCompile(`\d+`)
)

// genderSynonyms maps English, Hindi, and Hinglish gender words to the
// normalized value. Lookup is exact first, then substring containment.
var genderSynonyms = map[string]models.Gender{
	// Male variations
	"male": models.GenderMale, "m": models.GenderMale, "man": models.GenderMale,
	"boy": models.GenderMale, "guy": models.GenderMale, "लड़का": models.GenderMale,
	"पुरुष": models.GenderMale, "आदमी": models.GenderMale, "लडका": models.GenderMale,
	"पुरूष": models.GenderMale, "ladka": models.GenderMale, "purush": models.GenderMale,
	// Female variations
	"female": models.GenderFemale, "f": models.GenderFemale, "woman": models.GenderFemale,
	"girl": models.GenderFemale, "lady": models.GenderFemale, "महिला": models.GenderFemale,
	"लड़की": models.GenderFemale, "औरत": models.GenderFemale, "स्त्री": models.GenderFemale,
	"लडकी": models.GenderFemale, "ladki": models.GenderFemale, "mahila": models.GenderFemale,
	"aurat": models.GenderFemale,
	// Other variations
	"other": models.GenderOther, "o": models.GenderOther, "non-binary": models.GenderOther,
	"nonbinary": models.GenderOther, "trans": models.GenderOther, "transgender": models.GenderOther,
	"prefer not to say": models.GenderOther, "अन्य": models.GenderOther,
	"थर्ड जेंडर": models.GenderOther, "third gender": models.GenderOther, "anya": models.GenderOther,
}

// stateAliases maps common misspellings, abbreviations, and city names to
// canonical state names.
var stateAliases = map[string]string{
	"delhi":            "Delhi",
	"dilli":            "Delhi",
	"new delhi":        "Delhi",
	"ncr":              "Delhi",
	"mumbai":           "Maharashtra",
	"bombay":           "Maharashtra",
	"bangalore":        "Karnataka",
	"bengaluru":        "Karnataka",
	"calcutta":         "West Bengal",
	"kolkata":          "West Bengal",
	"madras":           "Tamil Nadu",
	"chennai":          "Tamil Nadu",
	"hyderabad":        "Telangana",
	"ap":               "Andhra Pradesh",
	"up":               "Uttar Pradesh",
	"mp":               "Madhya Pradesh",
	"hp":               "Himachal Pradesh",
	"uk":               "Uttarakhand",
	"uttaranchal":      "Uttarakhand",
	"tn":               "Tamil Nadu",
	"wb":               "West Bengal",
	"jk":               "Jammu and Kashmir",
	"j&k":              "Jammu and Kashmir",
	"andra":            "Andhra Pradesh",
	"andhrapradesh":    "Andhra Pradesh",
	"arunachalpradesh": "Arunachal Pradesh",
	"tamilnadu":        "Tamil Nadu",
	"westbengal":       "West Bengal",
	"uttarpradesh":     "Uttar Pradesh",
	"madhyapradesh":    "Madhya Pradesh",
	"himachalpradesh":  "Himachal Pradesh",
}

// genderScanOrder fixes the substring scan order so multi-class inputs
// resolve the same way every run.
var genderScanOrder = []string{
	"female", "woman", "girl", "lady", "mahila", "ladki", "aurat",
	"महिला", "लड़की", "औरत", "स्त्री", "लडकी",
	"male", "man", "boy", "guy", "purush", "ladka",
	"लड़का", "पुरुष", "आदमी", "लडका", "पुरूष",
	"non-binary", "nonbinary", "transgender", "trans", "third gender",
	"prefer not to say", "other", "anya", "अन्य", "थर्ड जेंडर",
	"m", "f", "o",
}

// stateAliasScanOrder fixes the alias substring scan order.
var stateAliasScanOrder = []string{
	"new delhi", "delhi", "dilli", "ncr",
	"mumbai", "bombay", "bangalore", "bengaluru",
	"calcutta", "kolkata", "madras", "chennai", "hyderabad",
	"andhrapradesh", "arunachalpradesh", "tamilnadu", "westbengal",
	"uttarpradesh", "madhyapradesh", "himachalpradesh",
	"uttaranchal", "andra", "j&k",
	"ap", "up", "mp", "hp", "uk", "tn", "wb", "jk",
}

// fuzzyStateThreshold is the minimum shared-distinct-character ratio for a
// fuzzy state match.
const fuzzyStateThreshold = 0.7

// Name validates and normalizes a person's name. Latin names are restricted
// to letters, spaces, hyphens, and apostrophes; any other character is only
// tolerated when the name contains at least one Devanagari rune. Latin words
// are title-cased.
func Name(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if len(name) < 2 {
		return "", false
	}
	if latinNamePattern.MatchString(name) && !containsDevanagari(name) {
		return "", false
	}
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " "), true
}

// Gender validates and normalizes a gender expression against the bilingual
// synonym table.
func Gender(raw string) (models.Gender, bool) {
	gender := strings.ToLower(strings.TrimSpace(raw))
	if gender == "" {
		return "", false
	}
	if normalized, ok := genderSynonyms[gender]; ok {
		return normalized, true
	}
	for _, key := range genderScanOrder {
		if strings.Contains(gender, key) {
			return genderSynonyms[key], true
		}
	}
	return "", false
}

// Age validates an age expressed as a number or embedded in free text.
// The first run of digits is taken; the parsed value must lie in [0,120].
func Age(raw string) (int, bool) {
	match := digitRunPattern.FindString(strings.TrimSpace(raw))
	if match == "" {
		return 0, false
	}
	age, err := strconv.Atoi(match)
	if err != nil || age < 0 || age > 120 {
		return 0, false
	}
	return age, true
}

// State validates and normalizes an Indian state or union territory name.
// Resolution order: canonical exact match, alias table exact match, alias
// substring containment, then fuzzy distinct-character overlap against the
// canonical list (first candidate over threshold wins).
func State(raw string) (string, bool) {
	state := strings.TrimSpace(raw)
	if state == "" {
		return "", false
	}
	lower := strings.ToLower(state)

	for _, canonical := range models.IndianStates {
		if lower == strings.ToLower(canonical) {
			return canonical, true
		}
	}
	if canonical, ok := stateAliases[lower]; ok {
		return canonical, true
	}
	for _, alias := range stateAliasScanOrder {
		if strings.Contains(lower, alias) {
			return stateAliases[alias], true
		}
	}
	for _, canonical := range models.IndianStates {
		if charOverlapRatio(lower, strings.ToLower(canonical)) > fuzzyStateThreshold {
			return canonical, true
		}
	}
	return "", false
}

// Field dispatches to the validator for the given field and wraps the result
// as a typed FieldValue.
func Field(field models.Field, raw string) (models.FieldValue, bool) {
	switch field {
	case models.FieldName:
		if name, ok := Name(raw); ok {
			return models.FieldValue{Field: field, Text: name}, true
		}
	case models.FieldGender:
		if gender, ok := Gender(raw); ok {
			return models.FieldValue{Field: field, Gender: gender}, true
		}
	case models.FieldAge:
		if age, ok := Age(raw); ok {
			return models.FieldValue{Field: field, Age: age}, true
		}
	case models.FieldState:
		if state, ok := State(raw); ok {
			return models.FieldValue{Field: field, Text: state}, true
		}
	}
	return models.FieldValue{}, false
}

// BestGuess coerces a raw extracted value into a typed field value after the
// retry budget is exhausted. It is more permissive than Field for names
// (any non-empty text is accepted verbatim) but still refuses values that
// cannot be represented in the profile's closed types.
func BestGuess(field models.Field, raw string) (models.FieldValue, bool) {
	if fv, ok := Field(field, raw); ok {
		return fv, true
	}
	if field == models.FieldName {
		if name := strings.TrimSpace(raw); name != "" {
			return models.FieldValue{Field: field, Text: name}, true
		}
	}
	return models.FieldValue{}, false
}

func containsDevanagari(s string) bool {
	for _, r := range s {
		if unicode.Is(devanagariRange, r) {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first letter of a word and lower-cases the rest.
// Non-Latin runes are unaffected by the case mapping.
func capitalize(word string) string {
	runes := []rune(word)
	for i, r := range runes {
		if i == 0 {
			runes[i] = unicode.ToUpper(r)
		} else {
			runes[i] = unicode.ToLower(r)
		}
	}
	return string(runes)
}

// charOverlapRatio computes |distinct(a) ∩ distinct(b)| / |distinct(b)|.
func charOverlapRatio(a, b string) float64 {
	setA := make(map[rune]struct{})
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range b {
		setB[r] = struct{}{}
	}
	if len(setB) == 0 {
		return 0
	}
	shared := 0
	for r := range setB {
		if _, ok := setA[r]; ok {
			shared++
		}
	}
	return float64(shared) / float64(len(setB))
}
