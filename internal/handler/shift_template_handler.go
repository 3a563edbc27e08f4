package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
	"github.com/Joshburn99/NexSpace-sub001/pkg/response"
)

type templateManager interface {
	Get(ctx context.Context, id string) (*models.ShiftTemplate, error)
	List(ctx context.Context, viewer models.Viewer, query dto.ShiftTemplateQuery) ([]models.ShiftTemplate, error)
	Create(ctx context.Context, req dto.CreateShiftTemplateRequest) (*dto.TemplateCreateResult, error)
	UpdateTemplate(ctx context.Context, id string, req dto.UpdateShiftTemplateRequest, regenerateFuture bool) (*dto.TemplateUpdateResult, error)
	Deactivate(ctx context.Context, id string) (*dto.TemplateDeactivateResult, error)
}

type shiftGenerationEngine interface {
	Generate(ctx context.Context, templateID string, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error)
	GenerateAll(ctx context.Context, horizonDays int) (*dto.GenerationSweepSummary, error)
	GetShiftsToGenerate(ctx context.Context, horizonDays int) ([]dto.TemplateGap, error)
	ResyncGeneratedCount(ctx context.Context, templateID string) (int, error)
	HorizonFor(tpl *models.ShiftTemplate, horizonDays int) int
	Today() time.Time
}

type timingValidator interface {
	ValidateShiftTiming(ctx context.Context, templateID string) (*dto.TimingValidationResult, error)
}

type generationQueue interface {
	EnqueueSweep(horizonDays int) (string, error)
	EnqueueTemplate(templateID string, start, end time.Time) (string, error)
}

// ShiftTemplateHandler exposes template management and generation endpoints.
type ShiftTemplateHandler struct {
	templates   templateManager
	generator   shiftGenerationEngine
	maintenance timingValidator
	queue       generationQueue
}

// NewShiftTemplateHandler constructs the handler. A nil queue makes generate-all run inline.
func NewShiftTemplateHandler(templates templateManager, generator shiftGenerationEngine, maintenance timingValidator, queue generationQueue) *ShiftTemplateHandler {
	return &ShiftTemplateHandler{templates: templates, generator: generator, maintenance: maintenance, queue: queue}
}

// Create godoc
// @Summary Create a recurring shift template
// @Description Active templates immediately generate their first horizon of shifts.
// @Tags Shift Templates
// @Accept json
// @Produce json
// @Param payload body dto.CreateShiftTemplateRequest true "Template payload"
// @Success 201 {object} response.Envelope
// @Router /shift-templates [post]
func (h *ShiftTemplateHandler) Create(c *gin.Context) {
	var req dto.CreateShiftTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift template payload"))
		return
	}
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !viewer.CanSeeFacility(req.FacilityID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "facility is outside your scope"))
		return
	}
	result, err := h.templates.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// List godoc
// @Summary List shift templates visible to the caller
// @Tags Shift Templates
// @Produce json
// @Param facilityId query string false "Facility ID"
// @Param active query bool false "Only active or inactive templates"
// @Success 200 {object} response.Envelope
// @Router /shift-templates [get]
func (h *ShiftTemplateHandler) List(c *gin.Context) {
	var query dto.ShiftTemplateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	viewer, err := viewerFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	templates, err := h.templates.List(c.Request.Context(), viewer, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, templates, nil)
}

// Get godoc
// @Summary Get a shift template
// @Tags Shift Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/{id} [get]
func (h *ShiftTemplateHandler) Get(c *gin.Context) {
	tpl, err := h.authorizedTemplate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Update godoc
// @Summary Edit a shift template
// @Description With regenerateFuture=true, open unassigned future shifts are deleted and regenerated from the edited template.
// @Tags Shift Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param regenerateFuture query bool false "Regenerate future shifts"
// @Param payload body dto.UpdateShiftTemplateRequest true "Template changes"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/{id} [patch]
func (h *ShiftTemplateHandler) Update(c *gin.Context) {
	var req dto.UpdateShiftTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid shift template payload"))
		return
	}
	regenerate := false
	if raw := c.Query("regenerateFuture"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "regenerateFuture must be a boolean"))
			return
		}
		regenerate = parsed
	}
	tpl, err := h.authorizedTemplate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.templates.UpdateTemplate(c.Request.Context(), tpl.ID, req, regenerate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Deactivate godoc
// @Summary Deactivate a shift template
// @Description Soft delete. Open unassigned future shifts of the template are removed; history is kept.
// @Tags Shift Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/{id} [delete]
func (h *ShiftTemplateHandler) Deactivate(c *gin.Context) {
	tpl, err := h.authorizedTemplate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.templates.Deactivate(c.Request.Context(), tpl.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Generate godoc
// @Summary Generate shifts from a template
// @Description Dates default to today and today plus the template horizon. async=true queues the work and answers 202.
// @Tags Shift Generation
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param async query bool false "Queue instead of generating inline"
// @Param payload body dto.GenerateShiftsRequest false "Date range"
// @Success 200 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Router /shift-templates/{id}/generate [post]
func (h *ShiftTemplateHandler) Generate(c *gin.Context) {
	var req dto.GenerateShiftsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
			return
		}
	}
	start, err := parseDateParam("startDate", req.StartDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateParam("endDate", req.EndDate)
	if err != nil {
		response.Error(c, err)
		return
	}

	tpl, err := h.authorizedTemplate(c)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			err = appErrors.Clone(appErrors.ErrConfiguration, "shift template not found")
		}
		response.Error(c, err)
		return
	}

	from := h.generator.Today()
	if start != nil {
		from = *start
	}
	to := from.AddDate(0, 0, h.generator.HorizonFor(tpl, 0))
	if end != nil {
		to = *end
	}
	if to.Before(from) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "endDate must not be before startDate"))
		return
	}

	if async, _ := strconv.ParseBool(c.Query("async")); async && h.queue != nil {
		jobID, err := h.queue.EnqueueTemplate(tpl.ID, from, to)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, gin.H{"jobId": jobID, "templateId": tpl.ID})
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), tpl.ID, from, to, dto.DefaultGenerateOptions())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// GenerateAll godoc
// @Summary Run generation for every active template
// @Description Queued for the worker pool; answers 202 with the job id.
// @Tags Shift Generation
// @Produce json
// @Param horizonDays query int false "Override every template horizon"
// @Success 202 {object} response.Envelope
// @Router /shift-templates/generate-all [post]
func (h *ShiftTemplateHandler) GenerateAll(c *gin.Context) {
	horizon, err := parseIntParam("horizonDays", c.Query("horizonDays"), 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.queue == nil {
		summary, err := h.generator.GenerateAll(c.Request.Context(), horizon)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, summary, nil)
		return
	}
	jobID, err := h.queue.EnqueueSweep(horizon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.SweepJobAccepted{JobID: jobID, HorizonDays: horizon})
}

// Gaps godoc
// @Summary List active templates missing shifts inside the horizon
// @Tags Shift Generation
// @Produce json
// @Param horizonDays query int false "Override every template horizon"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/gaps [get]
func (h *ShiftTemplateHandler) Gaps(c *gin.Context) {
	horizon, err := parseIntParam("horizonDays", c.Query("horizonDays"), 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	gaps, err := h.generator.GetShiftsToGenerate(c.Request.Context(), horizon)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gaps, nil)
}

// ValidateTiming godoc
// @Summary Repair shifts that drifted from their template
// @Tags Shift Maintenance
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/{id}/validate-timing [post]
func (h *ShiftTemplateHandler) ValidateTiming(c *gin.Context) {
	result, err := h.maintenance.ValidateShiftTiming(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ResyncCount godoc
// @Summary Reset a template's generated counter to its live shift count
// @Tags Shift Maintenance
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} response.Envelope
// @Router /shift-templates/{id}/resync-count [post]
func (h *ShiftTemplateHandler) ResyncCount(c *gin.Context) {
	id := c.Param("id")
	count, err := h.generator.ResyncGeneratedCount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.CountResyncResult{TemplateID: id, Count: count}, nil)
}

func (h *ShiftTemplateHandler) authorizedTemplate(c *gin.Context) (*models.ShiftTemplate, error) {
	viewer, err := viewerFromContext(c)
	if err != nil {
		return nil, err
	}
	tpl, err := h.templates.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, err
	}
	if !viewer.CanSeeFacility(tpl.FacilityID) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "shift template not found")
	}
	return tpl, nil
}
