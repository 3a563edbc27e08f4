package dto

import "github.com/Joshburn99/NexSpace-sub001/internal/models"

// CreateShiftTemplateRequest describes a new recurring template.
type CreateShiftTemplateRequest struct {
	Name          string  `json:"name" validate:"omitempty,max=200"`
	FacilityID    string  `json:"facilityId" validate:"required"`
	Department    string  `json:"department" validate:"required,max=120"`
	Specialty     string  `json:"specialty" validate:"required,max=120"`
	StartTime     string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime       string  `json:"endTime" validate:"required,datetime=15:04"`
	DaysOfWeek    []int   `json:"daysOfWeek" validate:"required,min=1,max=7,dive,min=0,max=6"`
	MinStaff      int     `json:"minStaff" validate:"required,min=1"`
	MaxStaff      int     `json:"maxStaff" validate:"required,min=1,gtefield=MinStaff"`
	HourlyRate    float64 `json:"hourlyRate" validate:"gte=0"`
	DaysInAdvance int     `json:"daysInAdvance" validate:"omitempty,min=1,max=366"`
	IsActive      *bool   `json:"isActive"`
}

// UpdateShiftTemplateRequest carries partial template edits. Nil fields are left untouched.
type UpdateShiftTemplateRequest struct {
	Name          *string  `json:"name" validate:"omitempty,max=200"`
	Department    *string  `json:"department" validate:"omitempty,min=1,max=120"`
	Specialty     *string  `json:"specialty" validate:"omitempty,min=1,max=120"`
	StartTime     *string  `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime       *string  `json:"endTime" validate:"omitempty,datetime=15:04"`
	DaysOfWeek    *[]int   `json:"daysOfWeek" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
	MinStaff      *int     `json:"minStaff" validate:"omitempty,min=1"`
	MaxStaff      *int     `json:"maxStaff" validate:"omitempty,min=1"`
	HourlyRate    *float64 `json:"hourlyRate" validate:"omitempty,gte=0"`
	DaysInAdvance *int     `json:"daysInAdvance" validate:"omitempty,min=1,max=366"`
	IsActive      *bool    `json:"isActive"`
}

// ShiftTemplateQuery filters template listings.
type ShiftTemplateQuery struct {
	FacilityID string `form:"facilityId"`
	Active     *bool  `form:"active"`
}

// RegenerationSummary reports what a regenerate-future edit did after the template was saved.
type RegenerationSummary struct {
	Deleted int      `json:"deleted"`
	Created int      `json:"created"`
	Errors  []string `json:"errors,omitempty"`
}

// TemplateUpdateResult is returned by template edits.
type TemplateUpdateResult struct {
	Template     *models.ShiftTemplate `json:"template"`
	Regeneration *RegenerationSummary  `json:"regeneration,omitempty"`
}

// TemplateCreateResult is returned by template creation.
type TemplateCreateResult struct {
	Template   *models.ShiftTemplate `json:"template"`
	Generation *GenerationResult     `json:"generation,omitempty"`
}

// TemplateDeactivateResult reports the soft delete of a template.
type TemplateDeactivateResult struct {
	Template       *models.ShiftTemplate `json:"template"`
	RemovedFutures int                   `json:"removedFutureShifts"`
}
