package booking

import (
	"time"

	"github.com/salonware/booking-api/internal/models"
)

// GranularityMin is the fixed quantization of bookable start times.
const GranularityMin = 30

const Granularity = GranularityMin * time.Minute

// Window is one weekday's availability projected onto a concrete calendar
// date, in the tenant's location.
type Window struct {
	Start time.Time
	End   time.Time

	HasLunch   bool
	LunchStart time.Time
	LunchEnd   time.Time
}

// Slot is a candidate appointment start of granularity width. The last slot
// of a day may be shorter when the closing time is off the granularity grid;
// its End then carries the literal closing time.
type Slot struct {
	Start time.Time
	End   time.Time
}

// WindowFromAvailability projects a weekly record onto date in loc. Returns
// false when the record is missing, disabled or malformed; callers treat
// that as "no availability", not as an error.
func WindowFromAvailability(av *models.WeeklyAvailability, date time.Time, loc *time.Location) (Window, bool) {
	if av == nil || !av.Active {
		return Window{}, false
	}

	start, okStart := atTime(av.StartTime, date, loc)
	end, okEnd := atTime(av.EndTime, date, loc)
	if !okStart || !okEnd || !end.After(start) {
		return Window{}, false
	}

	w := Window{Start: start, End: end}

	if av.LunchStart != "" && av.LunchEnd != "" {
		ls, okLS := atTime(av.LunchStart, date, loc)
		le, okLE := atTime(av.LunchEnd, date, loc)
		if okLS && okLE && le.After(ls) {
			w.HasLunch = true
			w.LunchStart = ls
			w.LunchEnd = le
		}
	}

	return w, true
}

func atTime(hm string, date time.Time, loc *time.Location) (time.Time, bool) {
	t, err := time.Parse(TimeLayoutHM, hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		loc,
	), true
}

const TimeLayoutHM = "15:04"

// GenerateSlots emits the ordered candidate starts for one window:
//   - first start is the window start rounded up to the granularity grid;
//   - a slot whose [start, start+granularity) touches the lunch window is
//     skipped (half-open comparison);
//   - starts not strictly after now are skipped;
//   - the final slot is clamped to the window end, so an off-grid closing
//     time is still emitted verbatim.
//
// Pure: same inputs, same output.
func GenerateSlots(w Window, granularity time.Duration, now time.Time) []Slot {
	if granularity <= 0 || !w.End.After(w.Start) {
		return nil
	}

	var slots []Slot
	for s := roundUp(w.Start, granularity); s.Before(w.End); s = s.Add(granularity) {
		end := s.Add(granularity)
		if end.After(w.End) {
			end = w.End
		}

		if w.HasLunch && s.Before(w.LunchEnd) && w.LunchStart.Before(s.Add(granularity)) {
			continue
		}

		if !s.After(now) {
			continue
		}

		slots = append(slots, Slot{Start: s, End: end})
	}

	return slots
}

// FitWithin drops slots where a booking of the given duration would run past
// the window end.
func FitWithin(slots []Slot, duration time.Duration, windowEnd time.Time) []Slot {
	var out []Slot
	for _, s := range slots {
		if s.Start.Add(duration).After(windowEnd) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// roundUp aligns t to the next granularity boundary of its local day.
func roundUp(t time.Time, g time.Duration) time.Time {
	gm := int(g / time.Minute)
	minutes := t.Hour()*60 + t.Minute()
	if t.Second() > 0 || t.Nanosecond() > 0 {
		minutes++
	}
	if rem := minutes % gm; rem != 0 {
		minutes += gm - rem
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, minutes, 0, 0, t.Location())
}
