// Package schedule classifies team assignments by schedule risk: delayed
// (past the category end, not done) or imminent (starting within a horizon,
// not yet started). The scan is a pure read: it never mutates the hierarchy
// and two scans over the same data at the same instant produce identical
// results.
package schedule

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/pkg/metrics"
)

const (
	// DefaultAlertHorizonDays is the look-ahead for UI alerts.
	DefaultAlertHorizonDays = 2
	// DefaultQueryHorizonDays is the look-ahead for broader starting-soon queries.
	DefaultQueryHorizonDays = 7
)

// Alert is one schedule-risk finding. Ephemeral and re-derivable; persisting
// it is the notifier's business, never the scanner's.
type Alert struct {
	Kind             string `json:"kind"`
	TeamAssignmentID int64  `json:"team_assignment_id"`
	TeamID           int64  `json:"team_id"`
	CategoryID       int64  `json:"category_id"`
	UnitID           int64  `json:"unit_id"`
	ProjectID        int64  `json:"project_id"`
	DaysOverdue      int    `json:"days_overdue,omitempty"`
	DaysUntilStart   int    `json:"days_until_start,omitempty"`
}

type RowSource interface {
	ListScheduleRows(ctx context.Context) ([]model.ScheduleRow, error)
}

type Scanner struct {
	rows   RowSource
	clock  Clock
	logger *zap.Logger
}

func NewScanner(rows RowSource, clock Clock, logger *zap.Logger) *Scanner {
	return &Scanner{
		rows:   rows,
		clock:  clock,
		logger: logger,
	}
}

// Scan reads the current hierarchy and classifies it against the injected
// clock. trigger labels the metrics series (poll, http).
func (s *Scanner) Scan(ctx context.Context, horizonDays int, trigger string) ([]Alert, error) {
	start := time.Now()

	rows, err := s.rows.ListScheduleRows(ctx)
	if err != nil {
		return nil, err
	}

	alerts := s.Classify(rows, s.clock.Now(), horizonDays)

	metrics.RecordScanDuration(trigger, time.Since(start))
	for _, a := range alerts {
		switch a.Kind {
		case model.AlertKindDelayed:
			metrics.IncrementScheduleAlert("delayed")
		case model.AlertKindImminent:
			metrics.IncrementScheduleAlert("imminent")
		}
	}

	s.logger.Info("Schedule scan completed",
		zap.Int("rows", len(rows)),
		zap.Int("alerts", len(alerts)),
		zap.Int("horizon_days", horizonDays),
		zap.String("trigger", trigger),
	)
	return alerts, nil
}

// Classify is the pure core: a function of the rows, the instant and the
// horizon. Rows with a broken ancestry link are skipped with a warning; a bad
// record never aborts the scan. An assignment matching both classifications
// is reported as delayed only.
func (s *Scanner) Classify(rows []model.ScheduleRow, now time.Time, horizonDays int) []Alert {
	var alerts []Alert
	for _, row := range rows {
		if row.CategoryID == nil || row.CategoryStart == nil || row.CategoryEnd == nil ||
			row.UnitID == nil || row.ProjectID == nil {
			s.logger.Warn("Skipping assignment with broken hierarchy link",
				zap.Int64("team_assignment_id", row.TeamAssignmentID),
			)
			continue
		}

		if row.Status != model.StatusDone && row.CategoryEnd.Before(now) {
			alerts = append(alerts, Alert{
				Kind:             model.AlertKindDelayed,
				TeamAssignmentID: row.TeamAssignmentID,
				TeamID:           row.TeamID,
				CategoryID:       *row.CategoryID,
				UnitID:           *row.UnitID,
				ProjectID:        *row.ProjectID,
				DaysOverdue:      daysCeil(now.Sub(*row.CategoryEnd)),
			})
			continue
		}

		if row.Status == model.StatusNotStarted {
			daysUntil := daysCeil(row.CategoryStart.Sub(now))
			if daysUntil >= 0 && daysUntil <= horizonDays && !row.CategoryStart.Before(now) {
				alerts = append(alerts, Alert{
					Kind:             model.AlertKindImminent,
					TeamAssignmentID: row.TeamAssignmentID,
					TeamID:           row.TeamID,
					CategoryID:       *row.CategoryID,
					UnitID:           *row.UnitID,
					ProjectID:        *row.ProjectID,
					DaysUntilStart:   daysUntil,
				})
			}
		}
	}
	return alerts
}

// daysCeil converts a duration to whole days, rounding up, floored at 0.
func daysCeil(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
