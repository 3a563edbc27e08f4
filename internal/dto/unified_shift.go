package dto

import (
	"time"

	"github.com/Joshburn99/NexSpace-sub001/internal/models"
)

// UnifiedShiftQuery narrows the unified feed. Zero values disable a filter.
type UnifiedShiftQuery struct {
	From       *time.Time
	To         *time.Time
	Status     models.ShiftStatus
	FacilityID string
}

// UnifiedShiftFeed is the merged, facility-scoped shift list.
type UnifiedShiftFeed struct {
	Shifts   []models.UnifiedShift `json:"shifts"`
	Degraded bool                  `json:"degraded"`
	Warnings []string              `json:"warnings,omitempty"`
	Cached   bool                  `json:"-"`
}
