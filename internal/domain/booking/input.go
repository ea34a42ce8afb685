package booking

import "time"

type AvailabilityInput struct {
	SalonID        uint
	ProfessionalID uint
	ServiceID      uint
	Date           time.Time
}

// Reasons attached to an empty (but valid) availability response.
const (
	ReasonNoAvailability = "no_availability_configured"
	ReasonFullyBooked    = "fully_booked"
)

// AvailabilityResult is the read endpoint's wire shape: admissible start
// times as tenant-local "HH:MM" strings, in chronological order. Slot ends
// stay internal; clients derive the width from the chosen service.
type AvailabilityResult struct {
	Slots  []string `json:"slots"`
	Reason string   `json:"reason,omitempty"`
}
