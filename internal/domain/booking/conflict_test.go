package booking

import (
	"testing"
	"time"

	"github.com/salonware/booking-api/internal/models"
)

func slotAt(date time.Time, h, m int) Slot {
	start := date.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
	return Slot{Start: start, End: start.Add(Granularity)}
}

// Existing 10:00-10:30 appointment knocks out exactly the 10:00 candidate.
func TestFilterConflicts_SingleAppointment(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	candidates := []Slot{
		slotAt(date, 9, 30),
		slotAt(date, 10, 0),
		slotAt(date, 10, 30),
	}
	busy := []Interval{
		{Start: date.Add(10 * time.Hour), End: date.Add(10*time.Hour + 30*time.Minute)},
	}

	got := FilterConflicts(candidates, 30*time.Minute, busy)
	if len(got) != 2 {
		t.Fatalf("expected 2 admissible slots, got %d", len(got))
	}
	if got[0].Start.Format(TimeLayoutHM) != "09:30" || got[1].Start.Format(TimeLayoutHM) != "10:30" {
		t.Fatalf("wrong survivors: %v", got)
	}
}

// Half-open intervals: a booking ending at 10:00 does not block one starting
// at 10:00.
func TestOverlaps_HalfOpenAdjacency(t *testing.T) {
	loc := time.UTC
	a := time.Date(2026, 3, 9, 9, 30, 0, 0, loc)
	b := a.Add(30 * time.Minute) // 10:00
	c := b.Add(30 * time.Minute) // 10:30

	if Overlaps(a, b, b, c) {
		t.Fatal("adjacent intervals must not overlap")
	}
	if !Overlaps(a, c, b, c) {
		t.Fatal("containing interval must overlap")
	}
}

// A 60-minute existing service blocks both half-hour candidates under it,
// using its own stored duration, not the requested one.
func TestFilterConflicts_LongerExistingService(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	appointments := []models.Appointment{
		{
			StartTime: date.Add(14 * time.Hour),
			EndTime:   date.Add(15 * time.Hour), // 60-min service
			Status:    string(StatusScheduled),
		},
		{
			StartTime: date.Add(16 * time.Hour),
			EndTime:   date.Add(16*time.Hour + 30*time.Minute),
			Status:    string(StatusCancelled), // must be ignored
		},
	}
	busy := BusyIntervals(appointments)
	if len(busy) != 1 {
		t.Fatalf("cancelled appointments must be excluded, got %d intervals", len(busy))
	}

	candidates := []Slot{
		slotAt(date, 13, 30),
		slotAt(date, 14, 0),
		slotAt(date, 14, 30),
		slotAt(date, 15, 0),
		slotAt(date, 16, 0),
	}
	got := FilterConflicts(candidates, 30*time.Minute, busy)

	want := []string{"13:30", "15:00", "16:00"}
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(got))
	}
	for i, s := range got {
		if s.Start.Format(TimeLayoutHM) != want[i] {
			t.Fatalf("slot %d: expected %s, got %s", i, want[i], s.Start.Format(TimeLayoutHM))
		}
	}
}

// A longer requested duration widens the candidate interval: a 60-minute
// request at 13:30 collides with a booking at 14:00.
func TestFilterConflicts_RequestedDurationWidth(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	busy := []Interval{
		{Start: date.Add(14 * time.Hour), End: date.Add(14*time.Hour + 30*time.Minute)},
	}
	candidates := []Slot{slotAt(date, 13, 30)}

	if got := FilterConflicts(candidates, 60*time.Minute, busy); len(got) != 0 {
		t.Fatalf("60-min request at 13:30 must conflict with 14:00 booking, got %v", got)
	}
	if got := FilterConflicts(candidates, 30*time.Minute, busy); len(got) != 1 {
		t.Fatal("30-min request at 13:30 must be admissible")
	}
}

func TestFilterConflicts_PreservesOrderAndInput(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, loc)

	candidates := []Slot{
		slotAt(date, 9, 0),
		slotAt(date, 9, 30),
		slotAt(date, 10, 0),
	}
	got := FilterConflicts(candidates, 30*time.Minute, nil)

	if len(got) != len(candidates) {
		t.Fatalf("no busy intervals: all candidates should survive")
	}
	for i := range got {
		if !got[i].Start.Equal(candidates[i].Start) {
			t.Fatal("order must be preserved")
		}
	}
}
