package model

import "time"

// ScheduleRow is a flattened view of one team assignment with its ancestry,
// as read by the schedule-risk scanner. Parent references are pointers so a
// broken link (orphaned row) surfaces as nil instead of aborting the scan.
type ScheduleRow struct {
	TeamAssignmentID int64
	TeamID           int64
	Status           string
	CategoryID       *int64
	CategoryStart    *time.Time
	CategoryEnd      *time.Time
	UnitID           *int64
	ProjectID        *int64
}
