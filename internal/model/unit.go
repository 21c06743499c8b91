package model

import "time"

const (
	UnitTypeVilla      = "villa"
	UnitTypeApartment  = "apartment"
	UnitTypeCommercial = "commercial"
)

type Unit struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Floor     *int      `json:"floor,omitempty"`
	Area      *float64  `json:"area,omitempty"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *Unit) Validate() error {
	if u.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if u.ProjectID == 0 {
		return NewValidationError("project_id", "must reference a project")
	}
	switch u.Type {
	case UnitTypeVilla, UnitTypeApartment, UnitTypeCommercial:
	default:
		return NewValidationError("type", "unknown unit type: "+u.Type)
	}
	if u.Progress < 0 || u.Progress > 100 {
		return NewValidationError("progress", "must be within [0,100]")
	}
	return nil
}
