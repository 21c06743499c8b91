package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benbakka/imtilak2-sub000/internal/model"
)

func TestAdvance(t *testing.T) {
	t.Run("cycles through the three working states", func(t *testing.T) {
		next, err := Advance(model.StatusNotStarted)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, next)

		next, err = Advance(model.StatusInProgress)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusDone, next)

		next, err = Advance(model.StatusDone)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusNotStarted, next)
	})

	t.Run("delayed resumes to in progress", func(t *testing.T) {
		next, err := Advance(model.StatusDelayed)
		assert.NoError(t, err)
		assert.Equal(t, model.StatusInProgress, next)
	})

	t.Run("three advances return to the initial state", func(t *testing.T) {
		s := Initial
		for i := 0; i < 3; i++ {
			var err error
			s, err = Advance(s)
			assert.NoError(t, err)
		}
		assert.Equal(t, Initial, s)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		_, err := Advance("PAUSED")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown assignment status")
	})

	t.Run("empty status is rejected", func(t *testing.T) {
		_, err := Advance("")
		assert.Error(t, err)
	})
}

func TestCanTransition(t *testing.T) {
	t.Run("any pair of known states is allowed", func(t *testing.T) {
		states := []string{
			model.StatusNotStarted,
			model.StatusInProgress,
			model.StatusDone,
			model.StatusDelayed,
		}
		for _, from := range states {
			for _, to := range states {
				assert.True(t, CanTransition(from, to), "%s -> %s", from, to)
			}
		}
	})

	t.Run("unknown states are rejected", func(t *testing.T) {
		assert.False(t, CanTransition("PAUSED", model.StatusDone))
		assert.False(t, CanTransition(model.StatusDone, "ARCHIVED"))
	})
}
