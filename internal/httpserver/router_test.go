package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error { return p.err }

func getReadyz(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return w
}

func TestHealthRouterReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ready when db answers and mq is connected", func(t *testing.T) {
		r := NewHealthRouter(zap.NewNop(), stubPinger{}, func() bool { return true })
		w := getReadyz(r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ready")
	})

	t.Run("db failure reports not ready", func(t *testing.T) {
		r := NewHealthRouter(zap.NewNop(), stubPinger{err: errors.New("db down")}, func() bool { return true })
		w := getReadyz(r)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "db_not_ready")
	})

	t.Run("mq disconnect reports not ready", func(t *testing.T) {
		r := NewHealthRouter(zap.NewNop(), stubPinger{}, func() bool { return false })
		w := getReadyz(r)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "mq_not_ready")
	})

	t.Run("nil mq check gates on the db alone", func(t *testing.T) {
		r := NewHealthRouter(zap.NewNop(), stubPinger{}, nil)
		w := getReadyz(r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("healthz is always ok", func(t *testing.T) {
		r := NewHealthRouter(zap.NewNop(), stubPinger{err: errors.New("db down")}, func() bool { return false })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
