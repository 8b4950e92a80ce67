// Package matcher scores a user profile against preprocessed scheme
// eligibility criteria.
package matcher

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/schemebot/schemebot/internal/models"
)

// Score weights for each eligibility dimension. A narrow or exclusive
// criterion earns the specificity bonus on top of the base weight.
const (
	ageBaseScore      = 0.4
	genderBaseScore   = 0.3
	stateBaseScore    = 0.3
	specificityBonus  = 0.1
	narrowAgeSpan     = 30
	genderReasonLimit = 3
)

// Match filters and ranks schemes for the given profile. Each scheme must
// pass the age, gender, and state gates; the score is the sum of per-gate
// weights plus specificity bonuses, rounded to two decimals. Results sort
// by score descending, preserving catalog order on ties. Reasons are
// rendered in the given language.
func Match(profile models.Profile, schemes []models.Scheme, language string) ([]models.MatchResult, error) {
	age := 0
	if profile.Age != nil {
		age = *profile.Age
	}
	var gender models.Gender
	if profile.Gender != nil {
		gender = *profile.Gender
	}
	state := ""
	if profile.State != nil {
		state = *profile.State
	}

	var matches []models.MatchResult
	for _, scheme := range schemes {
		result, ok := scoreScheme(scheme, age, gender, state, language)
		if !ok {
			continue
		}
		matches = append(matches, result)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].RelevanceScore > matches[j].RelevanceScore
	})

	slog.Debug("matcher.Match: scored schemes", "candidates", len(schemes), "matched", len(matches))
	return matches, nil
}

// scoreScheme runs one scheme through the three eligibility gates. Any
// failed gate rejects the scheme outright.
func scoreScheme(scheme models.Scheme, age int, gender models.Gender, state, language string) (models.MatchResult, bool) {
	c := scheme.Criteria
	score := 0.0
	var reasons []string

	// Age gate.
	if age < c.AgeMin || age > c.AgeMax {
		return models.MatchResult{}, false
	}
	ageScore := ageBaseScore
	if c.AgeMax-c.AgeMin < narrowAgeSpan {
		ageScore += specificityBonus
	}
	score += ageScore
	switch {
	case c.AgeMin > 0 && c.AgeMax < 120:
		reasons = append(reasons, reason(language, reasonAgeRange, age, c.AgeMin, c.AgeMax))
	case c.AgeMin > 0:
		reasons = append(reasons, reason(language, reasonAgeMin, age, c.AgeMin))
	case c.AgeMax < 120:
		reasons = append(reasons, reason(language, reasonAgeMax, age, c.AgeMax))
	}

	// Gender gate.
	genderMatch := containsGender(c.Genders, gender)
	if !c.AllowsAllGenders() && !genderMatch {
		return models.MatchResult{}, false
	}
	genderScore := genderBaseScore
	if len(c.Genders) == 1 && genderMatch {
		genderScore += specificityBonus
	}
	score += genderScore
	if len(c.Genders) < genderReasonLimit && genderMatch {
		reasons = append(reasons, reason(language, reasonGenderSpecific, genderLabel(language, gender)))
	}

	// State gate.
	national := len(c.States) >= len(models.IndianStates)
	stateMatch := containsState(c.States, state)
	if !national && !stateMatch {
		return models.MatchResult{}, false
	}
	stateScore := stateBaseScore
	if !national && stateMatch {
		stateScore += specificityBonus
	}
	score += stateScore
	if national {
		reasons = append(reasons, reason(language, reasonNationwide))
	} else if stateMatch {
		reasons = append(reasons, reason(language, reasonStateSpecific, state))
	}

	reasonText := strings.Join(reasons, "; ")
	if reasonText == "" {
		reasonText = reason(language, reasonBasicMatch)
	}

	return models.MatchResult{
		Scheme:         scheme,
		RelevanceScore: math.Round(score*100) / 100,
		Reason:         reasonText,
	}, true
}

func containsGender(genders []models.Gender, g models.Gender) bool {
	for _, candidate := range genders {
		if candidate == g {
			return true
		}
	}
	return false
}

func containsState(states []string, s string) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

type reasonKey string

const (
	reasonAgeRange       reasonKey = "age_range"
	reasonAgeMin         reasonKey = "age_min"
	reasonAgeMax         reasonKey = "age_max"
	reasonGenderSpecific reasonKey = "gender_specific"
	reasonNationwide     reasonKey = "nationwide"
	reasonStateSpecific  reasonKey = "state_specific"
	reasonBasicMatch     reasonKey = "basic_match"
)

var reasonTemplates = map[string]map[reasonKey]string{
	"en": {
		reasonAgeRange:       "Age %d is within eligible range (%d-%d)",
		reasonAgeMin:         "Age %d meets minimum age requirement of %d",
		reasonAgeMax:         "Age %d is below maximum age limit of %d",
		reasonGenderSpecific: "Scheme is designed for %s beneficiaries",
		reasonNationwide:     "Scheme is available across all states in India",
		reasonStateSpecific:  "Scheme is available in %s",
		reasonBasicMatch:     "Your profile matches basic eligibility criteria",
	},
	"hi": {
		reasonAgeRange:       "आयु %d पात्र सीमा (%d-%d) के भीतर है",
		reasonAgeMin:         "आयु %d न्यूनतम आयु आवश्यकता %d को पूरा करती है",
		reasonAgeMax:         "आयु %d अधिकतम आयु सीमा %d से कम है",
		reasonGenderSpecific: "योजना %s लाभार्थियों के लिए बनाई गई है",
		reasonNationwide:     "योजना भारत के सभी राज्यों में उपलब्ध है",
		reasonStateSpecific:  "योजना %s में उपलब्ध है",
		reasonBasicMatch:     "आपकी प्रोफ़ाइल बुनियादी पात्रता मानदंडों से मेल खाती है",
	},
}

// reason renders a localized reason string, falling back to English for
// unsupported languages.
func reason(language string, key reasonKey, args ...any) string {
	templates, ok := reasonTemplates[language]
	if !ok {
		templates = reasonTemplates["en"]
	}
	return fmt.Sprintf(templates[key], args...)
}

var genderLabels = map[string]map[models.Gender]string{
	"en": {
		models.GenderMale:   "male",
		models.GenderFemale: "female",
		models.GenderOther:  "other",
	},
	"hi": {
		models.GenderMale:   "पुरुष",
		models.GenderFemale: "महिला",
		models.GenderOther:  "अन्य",
	},
}

func genderLabel(language string, g models.Gender) string {
	labels, ok := genderLabels[language]
	if !ok {
		labels = genderLabels["en"]
	}
	return labels[g]
}
