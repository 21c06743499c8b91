package model

import "time"

// Category is a work phase inside a unit (foundation, electrical, ...).
// Order defines the execution sequence for display; it is not required to be
// unique within a unit.
type Category struct {
	ID        int64     `json:"id"`
	UnitID    int64     `json:"unit_id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Order     int       `json:"order"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) Validate() error {
	if c.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if c.UnitID == 0 {
		return NewValidationError("unit_id", "must reference a unit")
	}
	if !c.EndDate.After(c.StartDate) {
		return NewValidationError("end_date", "must be after start_date")
	}
	if c.Order <= 0 {
		return NewValidationError("order", "must be a positive integer")
	}
	if c.Progress < 0 || c.Progress > 100 {
		return NewValidationError("progress", "must be within [0,100]")
	}
	return nil
}
