package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/pkg/response"
)

type duplicateRemover interface {
	RemoveDuplicateShifts(ctx context.Context, templateID *string) (int, error)
}

// ShiftMaintenanceHandler exposes repair sweeps over generated shifts.
type ShiftMaintenanceHandler struct {
	service duplicateRemover
}

// NewShiftMaintenanceHandler constructs the handler.
func NewShiftMaintenanceHandler(svc duplicateRemover) *ShiftMaintenanceHandler {
	return &ShiftMaintenanceHandler{service: svc}
}

// Deduplicate godoc
// @Summary Remove duplicate generated shifts
// @Description Keeps the oldest shift per (template, date, position). Without templateId every template is swept.
// @Tags Shift Maintenance
// @Produce json
// @Param templateId query string false "Template ID"
// @Success 200 {object} response.Envelope
// @Router /shifts/deduplicate [post]
func (h *ShiftMaintenanceHandler) Deduplicate(c *gin.Context) {
	var templateID *string
	if id := c.Query("templateId"); id != "" {
		templateID = &id
	}
	removed, err := h.service.RemoveDuplicateShifts(c.Request.Context(), templateID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DeduplicationResult{TemplateID: templateID, Removed: removed}, nil)
}
