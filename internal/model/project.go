package model

import "time"

const (
	ProjectStatusPlanning  = "PLANNING"
	ProjectStatusActive    = "ACTIVE"
	ProjectStatusCompleted = "COMPLETED"
	ProjectStatusOnHold    = "ON_HOLD"
	ProjectStatusCancelled = "CANCELLED"
)

type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Project) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "must not be empty")
	}
	if !p.EndDate.After(p.StartDate) {
		return NewValidationError("end_date", "must be after start_date")
	}
	switch p.Status {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusCompleted,
		ProjectStatusOnHold, ProjectStatusCancelled:
	default:
		return NewValidationError("status", "unknown project status: "+p.Status)
	}
	if p.Progress < 0 || p.Progress > 100 {
		return NewValidationError("progress", "must be within [0,100]")
	}
	return nil
}
