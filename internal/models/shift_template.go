package models

import (
	"time"

	"github.com/lib/pq"
)

// ShiftTemplate is a recurring staffing definition for one facility department.
type ShiftTemplate struct {
	ID                   string        `db:"id" json:"id"`
	Name                 string        `db:"name" json:"name"`
	FacilityID           string        `db:"facility_id" json:"facility_id"`
	FacilityName         string        `db:"facility_name" json:"facility_name"`
	Department           string        `db:"department" json:"department"`
	Specialty            string        `db:"specialty" json:"specialty"`
	StartTime            string        `db:"start_time" json:"start_time"`
	EndTime              string        `db:"end_time" json:"end_time"`
	DaysOfWeek           pq.Int64Array `db:"days_of_week" json:"days_of_week"`
	MinStaff             int           `db:"min_staff" json:"min_staff"`
	MaxStaff             int           `db:"max_staff" json:"max_staff"`
	HourlyRate           float64       `db:"hourly_rate" json:"hourly_rate"`
	DaysInAdvance        int           `db:"days_in_advance" json:"days_in_advance"`
	IsActive             bool          `db:"is_active" json:"is_active"`
	GeneratedShiftsCount int           `db:"generated_shifts_count" json:"generated_shifts_count"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time     `db:"updated_at" json:"updated_at"`
}

// Weekdays returns the template's day set as ints.
func (t *ShiftTemplate) Weekdays() []int {
	days := make([]int, 0, len(t.DaysOfWeek))
	for _, d := range t.DaysOfWeek {
		days = append(days, int(d))
	}
	return days
}

// RunsOn reports whether the template recurs on the weekday.
func (t *ShiftTemplate) RunsOn(day time.Weekday) bool {
	for _, d := range t.DaysOfWeek {
		if time.Weekday(d) == day {
			return true
		}
	}
	return false
}

// ShiftTitle is the title snapshotted onto generated instances.
func (t *ShiftTemplate) ShiftTitle() string {
	if t.Name != "" {
		return t.Name
	}
	switch {
	case t.Specialty != "" && t.Department != "":
		return t.Specialty + " - " + t.Department
	case t.Specialty != "":
		return t.Specialty
	default:
		return t.Department
	}
}

// ShiftTemplateFilter narrows template listings.
type ShiftTemplateFilter struct {
	FacilityIDs []string
	Active      *bool
}
