package booking

import (
	"time"

	"github.com/salonware/booking-api/internal/models"
)

// Interval is an occupied [Start, End) range on a professional's day.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Half-open semantics: back-to-back bookings do not collide.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// BusyIntervals expands stored appointments into intervals using each one's
// own stored end (derived from its own service duration at admission time).
func BusyIntervals(appointments []models.Appointment) []Interval {
	busy := make([]Interval, 0, len(appointments))
	for _, ap := range appointments {
		if ap.Status == string(StatusCancelled) {
			continue
		}
		busy = append(busy, Interval{Start: ap.StartTime, End: ap.EndTime})
	}
	return busy
}

// FilterConflicts keeps the candidates whose [start, start+duration) interval
// overlaps none of the busy intervals. Order preserved, no side effects; the
// admission path re-runs this against the latest committed set rather than
// trusting a read-time result.
func FilterConflicts(slots []Slot, duration time.Duration, busy []Interval) []Slot {
	var out []Slot
	for _, s := range slots {
		if !overlapsAny(s.Start, s.Start.Add(duration), busy) {
			out = append(out, s)
		}
	}
	return out
}

func overlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
