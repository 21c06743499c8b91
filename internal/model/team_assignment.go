package model

import "time"

const (
	StatusNotStarted = "NOT_STARTED"
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusDelayed    = "DELAYED"
)

// TeamAssignment binds a team to a category of work. Status and progress are
// tracked as an independent pair: DONE does not force progress to 100 and a
// manual progress value is never coerced from status. Coherence between the
// two is a presentation concern.
type TeamAssignment struct {
	ID              int64     `json:"id"`
	CategoryID      int64     `json:"category_id"`
	TeamID          int64     `json:"team_id"`
	Status          string    `json:"status"`
	Progress        float64   `json:"progress"`
	ReceptionStatus bool      `json:"reception_status"`
	PaymentStatus   bool      `json:"payment_status"`
	Notes           string    `json:"notes"`
	Tasks           []string  `json:"tasks"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ValidStatus reports whether s is one of the four assignment states.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone, StatusDelayed:
		return true
	}
	return false
}

func (a *TeamAssignment) Validate() error {
	if a.CategoryID == 0 {
		return NewValidationError("category_id", "must reference a category")
	}
	if a.TeamID == 0 {
		return NewValidationError("team_id", "must reference a team")
	}
	if !ValidStatus(a.Status) {
		return NewValidationError("status", "unknown assignment status: "+a.Status)
	}
	if a.Progress < 0 || a.Progress > 100 {
		return NewValidationError("progress", "must be within [0,100]")
	}
	return nil
}
