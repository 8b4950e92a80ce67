package catalog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/schemebot/schemebot/internal/models"
)

const selectSchemesSQL = `SELECT id, name, name_hi, description, description_hi,
	eligibility, eligibility_hi, benefits, benefits_hi,
	documents_required, documents_required_hi, how_to_apply, how_to_apply_hi,
	category, category_hi, implementing_agency, implementing_agency_hi,
	target_demographics
FROM schemes ORDER BY id`

// scanSchemes decodes scheme rows. The target_demographics column holds a
// JSON document; a malformed document degrades that scheme to default
// criteria instead of failing the whole load.
func scanSchemes(rows *sql.Rows) ([]models.Scheme, error) {
	var schemes []models.Scheme
	for rows.Next() {
		var s models.Scheme
		var demographics sql.NullString
		err := rows.Scan(
			&s.ID, &s.Name, &s.NameHi, &s.Description, &s.DescriptionHi,
			&s.Eligibility, &s.EligibilityHi, &s.Benefits, &s.BenefitsHi,
			&s.DocumentsRequired, &s.DocumentsRequiredHi, &s.HowToApply, &s.HowToApplyHi,
			&s.Category, &s.CategoryHi, &s.ImplementingAgency, &s.ImplementingAgencyHi,
			&demographics,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheme row: %w", err)
		}
		if demographics.Valid && demographics.String != "" {
			if err := json.Unmarshal([]byte(demographics.String), &s.TargetDemographics); err != nil {
				slog.Warn("catalog: malformed target_demographics, using defaults", "scheme", s.ID, "error", err)
				s.TargetDemographics = models.TargetDemographics{}
			}
		}
		schemes = append(schemes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scheme rows: %w", err)
	}
	return schemes, nil
}
