package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joshburn99/NexSpace-sub001/internal/dto"
	"github.com/Joshburn99/NexSpace-sub001/internal/middleware"
	"github.com/Joshburn99/NexSpace-sub001/internal/models"
	appErrors "github.com/Joshburn99/NexSpace-sub001/pkg/errors"
)

type templateManagerMock struct {
	templates  map[string]*models.ShiftTemplate
	created    *dto.CreateShiftTemplateRequest
	regenerate bool
	listViewer models.Viewer
}

func (m *templateManagerMock) Get(ctx context.Context, id string) (*models.ShiftTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "shift template not found")
	}
	clone := *tpl
	return &clone, nil
}

func (m *templateManagerMock) List(ctx context.Context, viewer models.Viewer, query dto.ShiftTemplateQuery) ([]models.ShiftTemplate, error) {
	m.listViewer = viewer
	return []models.ShiftTemplate{}, nil
}

func (m *templateManagerMock) Create(ctx context.Context, req dto.CreateShiftTemplateRequest) (*dto.TemplateCreateResult, error) {
	m.created = &req
	return &dto.TemplateCreateResult{Template: &models.ShiftTemplate{ID: "tpl-new", FacilityID: req.FacilityID}}, nil
}

func (m *templateManagerMock) UpdateTemplate(ctx context.Context, id string, req dto.UpdateShiftTemplateRequest, regenerateFuture bool) (*dto.TemplateUpdateResult, error) {
	m.regenerate = regenerateFuture
	tpl, _ := m.Get(ctx, id)
	return &dto.TemplateUpdateResult{Template: tpl, Regeneration: &dto.RegenerationSummary{Deleted: 2, Created: 2}}, nil
}

func (m *templateManagerMock) Deactivate(ctx context.Context, id string) (*dto.TemplateDeactivateResult, error) {
	tpl, _ := m.Get(ctx, id)
	return &dto.TemplateDeactivateResult{Template: tpl, RemovedFutures: 3}, nil
}

type generationEngineMock struct {
	start, end  time.Time
	generateErr error
	sweeps      []int
	resynced    string
}

func (m *generationEngineMock) Generate(ctx context.Context, templateID string, start, end time.Time, opts dto.GenerateOptions) (*dto.GenerationResult, error) {
	m.start, m.end = start, end
	if m.generateErr != nil {
		return nil, m.generateErr
	}
	return &dto.GenerationResult{TemplateID: templateID, CreatedCount: 4}, nil
}

func (m *generationEngineMock) GenerateAll(ctx context.Context, horizonDays int) (*dto.GenerationSweepSummary, error) {
	m.sweeps = append(m.sweeps, horizonDays)
	return &dto.GenerationSweepSummary{Processed: 1, Succeeded: 1}, nil
}

func (m *generationEngineMock) GetShiftsToGenerate(ctx context.Context, horizonDays int) ([]dto.TemplateGap, error) {
	return []dto.TemplateGap{}, nil
}

func (m *generationEngineMock) ResyncGeneratedCount(ctx context.Context, templateID string) (int, error) {
	m.resynced = templateID
	return 12, nil
}

func (m *generationEngineMock) HorizonFor(tpl *models.ShiftTemplate, horizonDays int) int {
	return tpl.DaysInAdvance
}

func (m *generationEngineMock) Today() time.Time {
	return time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
}

type timingValidatorMock struct{}

func (timingValidatorMock) ValidateShiftTiming(ctx context.Context, templateID string) (*dto.TimingValidationResult, error) {
	return &dto.TimingValidationResult{TemplateID: templateID, Fixed: 1, Issues: []string{"wrong day of week"}}, nil
}

type generationQueueMock struct {
	sweeps    []int
	templates []string
}

func (m *generationQueueMock) EnqueueSweep(horizonDays int) (string, error) {
	m.sweeps = append(m.sweeps, horizonDays)
	return "job-sweep", nil
}

func (m *generationQueueMock) EnqueueTemplate(templateID string, start, end time.Time) (string, error) {
	m.templates = append(m.templates, templateID)
	return "job-template", nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Meta  map[string]interface{} `json:"meta"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newTemplateFixture() (*ShiftTemplateHandler, *templateManagerMock, *generationEngineMock, *generationQueueMock) {
	templates := &templateManagerMock{templates: map[string]*models.ShiftTemplate{
		"tpl-icu": {ID: "tpl-icu", FacilityID: "fac-1", DaysInAdvance: 14, IsActive: true},
	}}
	engine := &generationEngineMock{}
	queue := &generationQueueMock{}
	return NewShiftTemplateHandler(templates, engine, timingValidatorMock{}, queue), templates, engine, queue
}

func testContext(method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
}

func managerClaims(facilities ...string) *models.JWTClaims {
	return &models.JWTClaims{UserID: "mgr-1", Role: models.RoleFacilityManager, FacilityIDs: facilities}
}

func TestCreateTemplate(t *testing.T) {
	h, templates, _, _ := newTemplateFixture()
	body := []byte(`{"facilityId":"fac-1","department":"ICU","specialty":"RN","startTime":"07:00","endTime":"19:00","daysOfWeek":[1,3],"minStaff":2,"maxStaff":3,"hourlyRate":62.5}`)

	c, w := testContext(http.MethodPost, "/shift-templates", body, managerClaims("fac-1"))
	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, templates.created)
	assert.Equal(t, []int{1, 3}, templates.created.DaysOfWeek)

	c, w = testContext(http.MethodPost, "/shift-templates", body, managerClaims("fac-2"))
	h.Create(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodPost, "/shift-templates", []byte(`{"facilityId":`), adminClaims())
	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTemplatesPassesViewer(t *testing.T) {
	h, templates, _, _ := newTemplateFixture()
	c, w := testContext(http.MethodGet, "/shift-templates?active=true", nil, managerClaims("fac-1"))
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"fac-1"}, templates.listViewer.FacilityIDs)

	c, w = testContext(http.MethodGet, "/shift-templates", nil, nil)
	h.List(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetTemplateHidesOtherFacilities(t *testing.T) {
	h, _, _, _ := newTemplateFixture()
	c, w := testContext(http.MethodGet, "/shift-templates/tpl-icu", nil, managerClaims("fac-9"))
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateTemplateRegenerateFlag(t *testing.T) {
	h, templates, _, _ := newTemplateFixture()
	c, w := testContext(http.MethodPatch, "/shift-templates/tpl-icu?regenerateFuture=true", []byte(`{"hourlyRate":70}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, templates.regenerate)
	var result dto.TemplateUpdateResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	require.NotNil(t, result.Regeneration)
	assert.Equal(t, 2, result.Regeneration.Created)

	c, w = testContext(http.MethodPatch, "/shift-templates/tpl-icu?regenerateFuture=maybe", []byte(`{}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Update(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeactivateTemplate(t *testing.T) {
	h, _, _, _ := newTemplateFixture()
	c, w := testContext(http.MethodDelete, "/shift-templates/tpl-icu", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Deactivate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removedFutureShifts":3`)
}

func TestGenerateDefaultsToTemplateHorizon(t *testing.T) {
	h, _, engine, _ := newTemplateFixture()
	c, w := testContext(http.MethodPost, "/shift-templates/tpl-icu/generate", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), engine.start)
	assert.Equal(t, time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), engine.end)
}

func TestGenerateExplicitRange(t *testing.T) {
	h, _, engine, _ := newTemplateFixture()
	c, w := testContext(http.MethodPost, "/shift-templates/tpl-icu/generate", []byte(`{"startDate":"2025-02-01","endDate":"2025-02-14"}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Generate(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), engine.start)
	assert.Equal(t, time.Date(2025, 2, 14, 0, 0, 0, 0, time.UTC), engine.end)

	c, w = testContext(http.MethodPost, "/shift-templates/tpl-icu/generate", []byte(`{"startDate":"2025-02-14","endDate":"2025-02-01"}`), adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Generate(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateMissingTemplateIsConfigurationError(t *testing.T) {
	h, _, _, _ := newTemplateFixture()
	c, w := testContext(http.MethodPost, "/shift-templates/nope/generate", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.Generate(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, appErrors.ErrConfiguration.Code, decode(t, w).Error.Code)
}

func TestGenerateAsyncQueuesJob(t *testing.T) {
	h, _, engine, queue := newTemplateFixture()
	c, w := testContext(http.MethodPost, "/shift-templates/tpl-icu/generate?async=true", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.Generate(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"tpl-icu"}, queue.templates)
	assert.True(t, engine.start.IsZero())
}

func TestGenerateAll(t *testing.T) {
	h, _, engine, queue := newTemplateFixture()
	c, w := testContext(http.MethodPost, "/shift-templates/generate-all?horizonDays=21", nil, adminClaims())
	h.GenerateAll(c)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []int{21}, queue.sweeps)

	inline := NewShiftTemplateHandler(&templateManagerMock{}, engine, timingValidatorMock{}, nil)
	c, w = testContext(http.MethodPost, "/shift-templates/generate-all", nil, adminClaims())
	inline.GenerateAll(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []int{0}, engine.sweeps)

	c, w = testContext(http.MethodPost, "/shift-templates/generate-all?horizonDays=-1", nil, adminClaims())
	h.GenerateAll(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaintenanceEndpoints(t *testing.T) {
	h, _, engine, _ := newTemplateFixture()

	c, w := testContext(http.MethodPost, "/shift-templates/tpl-icu/validate-timing", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.ValidateTiming(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wrong day of week")

	c, w = testContext(http.MethodPost, "/shift-templates/tpl-icu/resync-count", nil, adminClaims())
	c.Params = gin.Params{{Key: "id", Value: "tpl-icu"}}
	h.ResyncCount(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tpl-icu", engine.resynced)
	assert.Contains(t, w.Body.String(), `"count":12`)
}

type duplicateRemoverMock struct {
	templateID *string
}

func (m *duplicateRemoverMock) RemoveDuplicateShifts(ctx context.Context, templateID *string) (int, error) {
	m.templateID = templateID
	return 5, nil
}

func TestDeduplicate(t *testing.T) {
	svc := &duplicateRemoverMock{}
	h := NewShiftMaintenanceHandler(svc)

	c, w := testContext(http.MethodPost, "/shifts/deduplicate?templateId=tpl-icu", nil, adminClaims())
	h.Deduplicate(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.templateID)
	assert.Equal(t, "tpl-icu", *svc.templateID)

	c, _ = testContext(http.MethodPost, "/shifts/deduplicate", nil, adminClaims())
	h.Deduplicate(c)
	assert.Nil(t, svc.templateID)
}

type unifiedReaderMock struct {
	query  dto.UnifiedShiftQuery
	viewer models.Viewer
	feed   *dto.UnifiedShiftFeed
	err    error
}

func (m *unifiedReaderMock) GetUnifiedShifts(ctx context.Context, viewer models.Viewer, query dto.UnifiedShiftQuery) (*dto.UnifiedShiftFeed, error) {
	m.viewer, m.query = viewer, query
	return m.feed, m.err
}

func sampleFeed() *dto.UnifiedShiftFeed {
	tpl := "tpl-icu"
	return &dto.UnifiedShiftFeed{
		Shifts: []models.UnifiedShift{
			{ID: "generated-1", Source: models.ShiftSourceGenerated, TemplateID: &tpl, Date: "2025-01-06", StartTime: "19:00", EndTime: "07:00", Title: "ICU Night", FacilityID: "fac-1", FacilityName: "General Hospital", Status: models.ShiftStatusOpen, RequiredStaff: 1, HourlyRate: 62.5},
			{ID: "manual-4", Source: models.ShiftSourceManual, Date: "2025-01-07", StartTime: "07:00", EndTime: "15:00", Title: "ER Day", FacilityID: "fac-1", FacilityName: "General Hospital", Status: models.ShiftStatusFilled, RequiredStaff: 2, AssignedStaffIDs: []string{"s-1"}},
		},
		Degraded: true,
		Warnings: []string{"manual shifts unavailable"},
		Cached:   true,
	}
}

func TestUnifiedList(t *testing.T) {
	svc := &unifiedReaderMock{feed: sampleFeed()}
	h := NewUnifiedShiftHandler(svc, time.UTC)

	c, w := testContext(http.MethodGet, "/shifts/unified?from=2025-01-06&to=2025-01-31&status=open&facilityId=fac-1", nil, managerClaims("fac-1"))
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.query.From)
	assert.Equal(t, "2025-01-06", svc.query.From.Format(models.DateLayout))
	assert.Equal(t, models.ShiftStatusOpen, svc.query.Status)
	assert.Equal(t, "fac-1", svc.query.FacilityID)
	assert.Equal(t, models.RoleFacilityManager, svc.viewer.Role)

	env := decode(t, w)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.Equal(t, true, env.Meta["degraded"])
	var shifts []models.UnifiedShift
	require.NoError(t, json.Unmarshal(env.Data, &shifts))
	assert.Len(t, shifts, 2)
}

func TestUnifiedListRejectsBadQuery(t *testing.T) {
	h := NewUnifiedShiftHandler(&unifiedReaderMock{feed: sampleFeed()}, nil)

	for _, target := range []string{
		"/shifts/unified?from=06-01-2025",
		"/shifts/unified?from=2025-02-01&to=2025-01-01",
		"/shifts/unified?status=sleeping",
	} {
		c, w := testContext(http.MethodGet, target, nil, adminClaims())
		h.List(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestUnifiedListServiceFailure(t *testing.T) {
	h := NewUnifiedShiftHandler(&unifiedReaderMock{err: appErrors.Internal(errors.New("both down"), "failed to load shifts")}, nil)
	c, w := testContext(http.MethodGet, "/shifts/unified", nil, adminClaims())
	h.List(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUnifiedExportFormats(t *testing.T) {
	h := NewUnifiedShiftHandler(&unifiedReaderMock{feed: sampleFeed()}, time.UTC)
	h.now = func() time.Time { return time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) }

	c, w := testContext(http.MethodGet, "/shifts/unified/export?format=csv", nil, adminClaims())
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "shifts-20250106.csv")
	assert.Equal(t, "true", w.Header().Get("X-Feed-Degraded"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "1/2")

	c, w = testContext(http.MethodGet, "/shifts/unified/export?format=ics", nil, adminClaims())
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "generated-1@nexspace")
	assert.Contains(t, body, "20250107T070000Z")

	c, w = testContext(http.MethodGet, "/shifts/unified/export?format=pdf", nil, adminClaims())
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	c, w = testContext(http.MethodGet, "/shifts/unified/export?format=xlsx", nil, adminClaims())
	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadiness(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"postgres": func(ctx context.Context) error { return nil },
	})
	c, w := testContext(http.MethodGet, "/ready", nil, nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h.checks["redis"] = func(ctx context.Context) error { return errors.New("connection refused") }
	c, w = testContext(http.MethodGet, "/ready", nil, nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestMetricsSummaryWithoutService(t *testing.T) {
	h := NewMetricsHandler(nil, nil)
	c, w := testContext(http.MethodGet, "/metrics/summary", nil, nil)
	h.Summary(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
