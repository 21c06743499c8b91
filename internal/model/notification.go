package model

import "time"

const (
	AlertKindDelayed  = "DELAYED"
	AlertKindImminent = "IMMINENT"
)

// Notification is a persisted, derived cache of a schedule alert. It can be
// rebuilt at any time by re-scanning; it is never the source of truth.
type Notification struct {
	ID               int64     `json:"id"`
	Kind             string    `json:"kind"`
	TeamAssignmentID int64     `json:"team_assignment_id"`
	ProjectID        int64     `json:"project_id"`
	UnitID           int64     `json:"unit_id"`
	CategoryID       int64     `json:"category_id"`
	TeamID           int64     `json:"team_id"`
	Days             int       `json:"days"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
}
