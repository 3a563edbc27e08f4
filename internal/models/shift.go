package models

import (
	"time"

	"github.com/lib/pq"
)

// ShiftStatus is the lifecycle state shared by generated and manual shifts.
type ShiftStatus string

const (
	ShiftStatusOpen              ShiftStatus = "open"
	ShiftStatusFilled            ShiftStatus = "filled"
	ShiftStatusInProgress        ShiftStatus = "in_progress"
	ShiftStatusCompleted         ShiftStatus = "completed"
	ShiftStatusCancelled         ShiftStatus = "cancelled"
	ShiftStatusNCNS              ShiftStatus = "ncns"
	ShiftStatusFacilityCancelled ShiftStatus = "facility_cancelled"
)

// IsValid reports whether s belongs to the status vocabulary.
func (s ShiftStatus) IsValid() bool {
	switch s {
	case ShiftStatusOpen, ShiftStatusFilled, ShiftStatusInProgress, ShiftStatusCompleted,
		ShiftStatusCancelled, ShiftStatusNCNS, ShiftStatusFacilityCancelled:
		return true
	}
	return false
}

// GeneratedShift is a dated instance expanded from a ShiftTemplate.
// (TemplateID, ShiftDate, ShiftPosition) identifies the slot; the remaining
// descriptive fields are a snapshot taken at generation time.
type GeneratedShift struct {
	ID               int64          `db:"id" json:"id"`
	TemplateID       string         `db:"template_id" json:"template_id"`
	ShiftDate        time.Time      `db:"shift_date" json:"shift_date"`
	ShiftPosition    int            `db:"shift_position" json:"shift_position"`
	Title            string         `db:"title" json:"title"`
	Department       string         `db:"department" json:"department"`
	Specialty        string         `db:"specialty" json:"specialty"`
	FacilityID       string         `db:"facility_id" json:"facility_id"`
	FacilityName     string         `db:"facility_name" json:"facility_name"`
	StartTime        string         `db:"start_time" json:"start_time"`
	EndTime          string         `db:"end_time" json:"end_time"`
	HourlyRate       float64        `db:"hourly_rate" json:"hourly_rate"`
	Status           ShiftStatus    `db:"status" json:"status"`
	AssignedStaffIDs pq.StringArray `db:"assigned_staff_ids" json:"assigned_staff_ids"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Key returns the slot identity of the instance.
func (s *GeneratedShift) Key() ShiftSlotKey {
	return NewShiftSlotKey(s.TemplateID, s.ShiftDate, s.ShiftPosition)
}

// Regenerable reports whether template regeneration may replace the instance on or after today.
func (s *GeneratedShift) Regenerable(today time.Time) bool {
	return !s.ShiftDate.Before(today) && s.Status == ShiftStatusOpen && len(s.AssignedStaffIDs) == 0
}

// ShiftSlotKey is the uniqueness key of a generated shift.
type ShiftSlotKey struct {
	TemplateID string
	Date       string
	Position   int
}

// NewShiftSlotKey builds a key using the calendar date of day.
func NewShiftSlotKey(templateID string, day time.Time, position int) ShiftSlotKey {
	return ShiftSlotKey{TemplateID: templateID, Date: day.Format(DateLayout), Position: position}
}

// DateLayout is the calendar-date format used across the shift engine.
const DateLayout = "2006-01-02"

// ManualShift is an ad-hoc shift created without a template.
type ManualShift struct {
	ID               int64          `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	Department       string         `db:"department" json:"department"`
	Specialty        string         `db:"specialty" json:"specialty"`
	FacilityID       string         `db:"facility_id" json:"facility_id"`
	FacilityName     string         `db:"facility_name" json:"facility_name"`
	ShiftDate        time.Time      `db:"shift_date" json:"shift_date"`
	StartTime        string         `db:"start_time" json:"start_time"`
	EndTime          string         `db:"end_time" json:"end_time"`
	HourlyRate       float64        `db:"hourly_rate" json:"hourly_rate"`
	RequiredStaff    int            `db:"required_staff" json:"required_staff"`
	Status           ShiftStatus    `db:"status" json:"status"`
	AssignedStaffIDs pq.StringArray `db:"assigned_staff_ids" json:"assigned_staff_ids"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ShiftSource tags where a unified shift came from.
type ShiftSource string

const (
	ShiftSourceGenerated ShiftSource = "generated"
	ShiftSourceManual    ShiftSource = "manual"
)

// UnifiedShift is the read projection merging generated and manual shifts.
type UnifiedShift struct {
	ID               string      `json:"id"`
	SourceID         int64       `json:"source_id"`
	Source           ShiftSource `json:"source"`
	TemplateID       *string     `json:"template_id,omitempty"`
	ShiftPosition    *int        `json:"shift_position,omitempty"`
	Date             string      `json:"date"`
	StartTime        string      `json:"start_time"`
	EndTime          string      `json:"end_time"`
	Title            string      `json:"title"`
	Department       string      `json:"department"`
	Specialty        string      `json:"specialty"`
	FacilityID       string      `json:"facility_id"`
	FacilityName     string      `json:"facility_name"`
	HourlyRate       float64     `json:"hourly_rate"`
	RequiredStaff    int         `json:"required_staff"`
	Status           ShiftStatus `json:"status"`
	AssignedStaffIDs []string    `json:"assigned_staff_ids"`
}
