// Package models defines scheme and eligibility structures for SchemeBot.
package models

import (
	"encoding/json"
	"fmt"
)

// StringList accepts either a JSON string or an array of strings. Catalog
// sources are loosely typed: "gender": "All" and "gender": ["Female"] must
// both decode.
type StringList []string

// UnmarshalJSON implements lenient decoding for StringList.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = StringList(many)
		return nil
	}
	return fmt.Errorf("string list: expected string or array of strings, got %s", string(data))
}

// TargetDemographics mirrors the loosely-typed targeting block of a raw
// scheme record. Any sub-field may be absent or malformed; criteria
// derivation applies safe defaults per field.
type TargetDemographics struct {
	MinAge   *int       `json:"min_age,omitempty"`
	MaxAge   *int       `json:"max_age,omitempty"`
	AgeText  string     `json:"age,omitempty"` // loose text like "18-40 years" or "Above 18"
	Gender   StringList `json:"gender,omitempty"`
	Location StringList `json:"location,omitempty"`
	Income   StringList `json:"income,omitempty"`
}

// Scheme is a government welfare program with localized text fields.
// The *_hi variants are optional Hindi renderings used by display projection.
type Scheme struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	NameHi               string `json:"name_hi,omitempty"`
	Description          string `json:"description"`
	DescriptionHi        string `json:"description_hi,omitempty"`
	Eligibility          string `json:"eligibility"`
	EligibilityHi        string `json:"eligibility_hi,omitempty"`
	Benefits             string `json:"benefits"`
	BenefitsHi           string `json:"benefits_hi,omitempty"`
	DocumentsRequired    string `json:"documents_required"`
	DocumentsRequiredHi  string `json:"documents_required_hi,omitempty"`
	HowToApply           string `json:"how_to_apply"`
	HowToApplyHi         string `json:"how_to_apply_hi,omitempty"`
	Category             string `json:"category"`
	CategoryHi           string `json:"category_hi,omitempty"`
	ImplementingAgency   string `json:"implementing_agency"`
	ImplementingAgencyHi string `json:"implementing_agency_hi,omitempty"`

	TargetDemographics TargetDemographics `json:"target_demographics"`

	// Criteria is derived once at catalog load and always fully populated.
	Criteria EligibilityCriteria `json:"-"`
}

// EligibilityCriteria is the fully-defaulted, structured form of a scheme's
// targeting rules. Matching never fails due to a missing criterion.
type EligibilityCriteria struct {
	AgeMin  int
	AgeMax  int
	Genders []Gender
	States  []string
	Income  []string
}

// AllowsAllGenders reports whether the criteria do not restrict gender.
func (c EligibilityCriteria) AllowsAllGenders() bool {
	return len(c.Genders) >= len(Genders)
}

// MatchResult annotates a scheme with its relevance to one profile.
type MatchResult struct {
	Scheme         Scheme  `json:"scheme"`
	RelevanceScore float64 `json:"relevance_score"`
	Reason         string  `json:"reason"`
}
