package model

import "time"

// Template is a reusable plan: ordered categories with durations relative to
// an anchor date supplied at application time. Templates never hold concrete
// dates.
type Template struct {
	ID         int64              `json:"id"`
	Name       string             `json:"name"`
	UnitType   string             `json:"unit_type"`
	Categories []TemplateCategory `json:"categories"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type TemplateCategory struct {
	ID           int64                `json:"id"`
	TemplateID   int64                `json:"template_id"`
	Name         string               `json:"name"`
	Order        int                  `json:"order"`
	DurationDays int                  `json:"duration_days"`
	Assignments  []TemplateAssignment `json:"assignments"`
}

type TemplateAssignment struct {
	ID                 int64    `json:"id"`
	TemplateCategoryID int64    `json:"template_category_id"`
	TeamID             int64    `json:"team_id"`
	Tasks              []string `json:"tasks"`
	Notes              string   `json:"notes"`
}

func (t *Template) Validate() error {
	if t.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	for _, tc := range t.Categories {
		if tc.Name == "" {
			return NewValidationError("categories.name", "must not be empty")
		}
		if tc.Order <= 0 {
			return NewValidationError("categories.order", "must be a positive integer")
		}
		if tc.DurationDays <= 0 {
			return NewValidationError("categories.duration_days", "must be a positive integer")
		}
	}
	return nil
}
