package dto

import "github.com/Joshburn99/NexSpace-sub001/internal/models"

// GenerateOptions tunes a single generation pass.
type GenerateOptions struct {
	SkipExisting bool
}

// DefaultGenerateOptions returns the options used by every engine caller.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{SkipExisting: true}
}

// GenerateShiftsRequest asks for instances of one template in a date range.
// Dates use the YYYY-MM-DD layout; omitted values default to today and today plus the template horizon.
type GenerateShiftsRequest struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// GenerationResult summarises one template expansion.
type GenerationResult struct {
	TemplateID   string                  `json:"templateId"`
	Created      []models.GeneratedShift `json:"created"`
	CreatedCount int                     `json:"createdCount"`
	Skipped      int                     `json:"skipped"`
	Dates        []string                `json:"dates"`
}

// SweepError records one template that failed during a sweep.
type SweepError struct {
	TemplateID string `json:"templateId"`
	Message    string `json:"message"`
}

// GenerationSweepSummary aggregates a generate-all pass.
type GenerationSweepSummary struct {
	Processed int          `json:"processed"`
	Succeeded int          `json:"succeeded"`
	Created   int          `json:"created"`
	Errors    []SweepError `json:"errors"`
}

// TemplateGap lists the dates of an active template missing at least one position.
type TemplateGap struct {
	Template     models.ShiftTemplate `json:"template"`
	MissingDates []string             `json:"missingDates"`
}

// TimingValidationResult reports drift repairs for a template.
type TimingValidationResult struct {
	TemplateID string   `json:"templateId"`
	Fixed      int      `json:"fixed"`
	Issues     []string `json:"issues"`
}

// DeduplicationResult reports a duplicate sweep.
type DeduplicationResult struct {
	TemplateID *string `json:"templateId,omitempty"`
	Removed    int     `json:"removed"`
}

// CountResyncResult reports a generated-count resync.
type CountResyncResult struct {
	TemplateID string `json:"templateId"`
	Count      int    `json:"count"`
}

// SweepJobAccepted acknowledges a queued generate-all sweep.
type SweepJobAccepted struct {
	JobID       string `json:"jobId"`
	HorizonDays int    `json:"horizonDays"`
}
