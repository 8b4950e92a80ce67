// Package catalog loads the scheme catalog from a static source and derives
// structured eligibility criteria for matching.
package catalog

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/schemebot/schemebot/internal/models"
)

// Default age bounds when a scheme does not restrict age.
const (
	DefaultMinAge = 0
	DefaultMaxAge = 120
)

var (
	ageRangePattern = regexp.MustCompile(`(\d+)\s*(?:[-–—]|to)\s*(\d+)`)
	ageAbovePattern = regexp.MustCompile(`above\s+(\d+)|(\d+)\s+.*above`)
	ageBelowPattern = regexp.MustCompile(`below\s+(\d+)|(\d+)\s+.*below`)
	ageExactPattern = regexp.MustCompile(`(\d+)\s+years?`)
)

// Derive computes fully-defaulted eligibility criteria from a scheme's
// loosely-typed targeting block. Each criterion defaults independently: a
// malformed sub-field never blocks the others, and matching never fails due
// to a missing criterion.
func Derive(s models.Scheme) models.EligibilityCriteria {
	c := models.EligibilityCriteria{
		AgeMin:  DefaultMinAge,
		AgeMax:  DefaultMaxAge,
		Genders: allGenders(),
		States:  allStates(),
		Income:  []string{"All"},
	}

	demo := s.TargetDemographics

	if demo.MinAge != nil && demo.MaxAge != nil {
		c.AgeMin = *demo.MinAge
		c.AgeMax = *demo.MaxAge
	} else if demo.AgeText != "" {
		c.AgeMin, c.AgeMax = ParseAgeRange(demo.AgeText)
	}

	if len(demo.Gender) > 0 && !containsFold(demo.Gender, "All") {
		genders := make([]models.Gender, 0, len(demo.Gender))
		for _, g := range demo.Gender {
			for _, valid := range models.Genders {
				if models.Gender(g) == valid {
					genders = append(genders, valid)
				}
			}
		}
		if len(genders) > 0 {
			c.Genders = genders
		}
	}

	if states := parseLocationList(demo.Location); len(states) > 0 {
		c.States = states
	}

	if len(demo.Income) > 0 {
		c.Income = append([]string(nil), demo.Income...)
	}

	return c
}

// ParseAgeRange extracts minimum and maximum ages from loose eligibility
// text like "18-40 years", "Above 18", "Below 60", "18 years", or "Adult".
// Unrecognized text yields the open default range.
func ParseAgeRange(text string) (minAge, maxAge int) {
	minAge, maxAge = DefaultMinAge, DefaultMaxAge
	lower := strings.ToLower(text)

	if strings.Contains(lower, "all") {
		return minAge, maxAge
	}
	if m := ageRangePattern.FindStringSubmatch(text); m != nil {
		lo, err1 := strconv.Atoi(m[1])
		hi, err2 := strconv.Atoi(m[2])
		if err1 == nil && err2 == nil {
			return lo, hi
		}
	}
	if m := ageAbovePattern.FindStringSubmatch(lower); m != nil {
		if age, err := strconv.Atoi(firstGroup(m)); err == nil {
			return age, maxAge
		}
	}
	if m := ageBelowPattern.FindStringSubmatch(lower); m != nil {
		if age, err := strconv.Atoi(firstGroup(m)); err == nil {
			return minAge, age
		}
	}
	if m := ageExactPattern.FindStringSubmatch(text); m != nil {
		if age, err := strconv.Atoi(m[1]); err == nil {
			return age, age
		}
	}
	if strings.Contains(lower, "adult") {
		return 18, maxAge
	}
	return minAge, maxAge
}

// parseLocationList resolves the location sub-field to a concrete state
// list. "All" and "Rural" mean every state; "except X, Y" subtracts the
// named states; anything else is scanned for canonical state names. An
// unresolvable value yields nil so the caller keeps the default.
func parseLocationList(locations models.StringList) []string {
	if len(locations) == 0 {
		return nil
	}
	if containsFold(locations, "All") || containsFold(locations, "Rural") {
		return allStates()
	}

	var states []string
	for _, entry := range locations {
		for _, state := range ParseLocations(entry) {
			if !containsString(states, state) {
				states = append(states, state)
			}
		}
	}
	return states
}

// ParseLocations extracts canonical state names from a single loose
// location string, handling "except" clauses and embedded state names.
func ParseLocations(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	lower := strings.ToLower(trimmed)

	if lower == "all" || lower == "all states" || lower == "rural" {
		return allStates()
	}

	if idx := strings.Index(lower, "except"); idx >= 0 {
		excludedText := lower[idx+len("except"):]
		excluded := make(map[string]struct{})
		for _, part := range strings.Split(excludedText, ",") {
			part = strings.TrimSpace(part)
			for _, state := range models.IndianStates {
				if part == strings.ToLower(state) {
					excluded[state] = struct{}{}
				}
			}
		}
		var states []string
		for _, state := range models.IndianStates {
			if _, skip := excluded[state]; !skip {
				states = append(states, state)
			}
		}
		return states
	}

	var states []string
	for _, state := range models.IndianStates {
		if strings.Contains(lower, strings.ToLower(state)) {
			states = append(states, state)
		}
	}
	return states
}

// Preprocess derives criteria for every scheme in place.
func Preprocess(schemes []models.Scheme) {
	for i := range schemes {
		schemes[i].Criteria = Derive(schemes[i])
	}
}

func allGenders() []models.Gender {
	return append([]models.Gender(nil), models.Genders...)
}

func allStates() []string {
	return append([]string(nil), models.IndianStates...)
}

func containsFold(list models.StringList, target string) bool {
	for _, s := range list {
		if strings.EqualFold(strings.TrimSpace(s), target) {
			return true
		}
	}
	return false
}

func containsString(list []string, target string) bool {
	for _, s := range list {
		if s == target {
			return true
		}
	}
	return false
}

func firstGroup(match []string) string {
	for _, g := range match[1:] {
		if g != "" {
			return g
		}
	}
	return ""
}
