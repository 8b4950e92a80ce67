// Package recommend produces ranked, localized scheme recommendations from a
// completed user profile.
package recommend

import (
	"fmt"
	"log/slog"

	"github.com/schemebot/schemebot/internal/catalog"
	"github.com/schemebot/schemebot/internal/i18n"
	"github.com/schemebot/schemebot/internal/matcher"
	"github.com/schemebot/schemebot/internal/models"
)

// Service ranks catalog schemes against user profiles.
type Service struct {
	catalog *catalog.Catalog
}

// NewService creates a recommendation service over a loaded catalog.
func NewService(c *catalog.Catalog) *Service {
	return &Service{catalog: c}
}

// Recommend matches the profile against the catalog and localizes the
// results for display.
func (s *Service) Recommend(profile models.Profile, language string) ([]models.MatchResult, error) {
	if s.catalog.Len() == 0 {
		slog.Warn("Service.Recommend: no schemes available for recommendations")
		return nil, nil
	}

	matches, err := matcher.Match(profile, s.catalog.Schemes(), language)
	if err != nil {
		return nil, fmt.Errorf("failed to match schemes: %w", err)
	}

	slog.Info("Service.Recommend: matched schemes for user", "matches", len(matches), "language", language)
	return i18n.LocalizeMatches(matches, language), nil
}

// FormatSummary renders the conversational summary line for a result set.
func (s *Service) FormatSummary(matches []models.MatchResult, language string) string {
	if len(matches) == 0 {
		return i18n.Message(language, i18n.MsgNoRecommendations)
	}
	return i18n.RecommendationSummary(language, len(matches))
}

// SchemeDetails looks up a single scheme by ID, localized for display.
func (s *Service) SchemeDetails(id, language string) (models.Scheme, bool) {
	scheme, ok := s.catalog.SchemeByID(id)
	if !ok {
		return models.Scheme{}, false
	}
	return i18n.LocalizeScheme(scheme, language), true
}
