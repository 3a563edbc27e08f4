package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Joshburn99/NexSpace-sub001/internal/middleware"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
)

func viewerFromContext(c *gin.Context) (models.Viewer, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return models.Viewer{}, appErrors.ErrUnauthorized
	}
	return claims.Viewer(), nil
}

// parseDateParam parses a YYYY-MM-DD value. Empty input yields nil.
func parseDateParam(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, name+" must use YYYY-MM-DD")
	}
	return &t, nil
}

func parseIntParam(name, value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a non-negative integer")
	}
	return n, nil
}
