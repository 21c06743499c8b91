package handler

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/benbakka/imtilak2-sub000/internal/model"
	"github.com/benbakka/imtilak2-sub000/internal/repository"
)

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// not-found 404, everything else (store failures, partial cascades) 500.
func writeError(c *gin.Context, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Error()})
		return
	}
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// roundPct rounds a stored full-precision percentage for display.
func roundPct(v float64) int {
	return int(math.Round(v))
}
