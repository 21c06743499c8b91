// Package status holds the team-assignment lifecycle as an explicit
// transition table. The graph is not a DAG: DONE reopens to NOT_STARTED
// (rework is routine on site) and DELAYED resumes to IN_PROGRESS.
package status

import (
	"fmt"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

// Initial is the state every new assignment starts in.
const Initial = model.StatusNotStarted

// advanceTable drives the one-click status cycle.
var advanceTable = map[string]string{
	model.StatusNotStarted: model.StatusInProgress,
	model.StatusInProgress: model.StatusDone,
	model.StatusDone:       model.StatusNotStarted,
	model.StatusDelayed:    model.StatusInProgress,
}

// Advance returns the next state in the manual cycle. It is only ever driven
// by a user action; a schedule breach never advances state on its own.
func Advance(current string) (string, error) {
	next, ok := advanceTable[current]
	if !ok {
		return "", fmt.Errorf("unknown assignment status: %q", current)
	}
	return next, nil
}

// CanTransition reports whether a manual set from one state to another is
// accepted. Any pair of known states is allowed; the table only guards
// against unknown values.
func CanTransition(from, to string) bool {
	return model.ValidStatus(from) && model.ValidStatus(to)
}
