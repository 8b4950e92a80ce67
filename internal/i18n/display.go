package i18n

import "github.com/schemebot/schemebot/internal/models"

// LocalizeScheme projects a scheme's display fields for the given language.
// For Hindi, each of the eight displayable fields is replaced by its _hi
// variant when that variant is non-empty; fields without a Hindi rendering
// keep the English text (per-field granularity, not all-or-nothing).
func LocalizeScheme(s models.Scheme, language string) models.Scheme {
	if language != LanguageHindi {
		return s
	}
	if s.NameHi != "" {
		s.Name = s.NameHi
	}
	if s.DescriptionHi != "" {
		s.Description = s.DescriptionHi
	}
	if s.EligibilityHi != "" {
		s.Eligibility = s.EligibilityHi
	}
	if s.BenefitsHi != "" {
		s.Benefits = s.BenefitsHi
	}
	if s.DocumentsRequiredHi != "" {
		s.DocumentsRequired = s.DocumentsRequiredHi
	}
	if s.HowToApplyHi != "" {
		s.HowToApply = s.HowToApplyHi
	}
	if s.CategoryHi != "" {
		s.Category = s.CategoryHi
	}
	if s.ImplementingAgencyHi != "" {
		s.ImplementingAgency = s.ImplementingAgencyHi
	}
	return s
}

// LocalizeMatches applies LocalizeScheme to every result in a match list.
func LocalizeMatches(matches []models.MatchResult, language string) []models.MatchResult {
	if language != LanguageHindi {
		return matches
	}
	localized := make([]models.MatchResult, len(matches))
	for i, m := range matches {
		m.Scheme = LocalizeScheme(m.Scheme, language)
		localized[i] = m
	}
	return localized
}
