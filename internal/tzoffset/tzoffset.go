// Package tzoffset converts between absolute instants and tenant-local
// wall-clock values using a fixed UTC offset in minutes. The offset is always
// passed in by the caller; nothing here reads the process timezone, so two
// tenants with different offsets can be served on the same code path.
package tzoffset

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DateTimeLayout = "2006-01-02 15:04"
)

// Name renders an offset as "UTC±HH:MM".
func Name(offsetMin int) string {
	sign := "+"
	m := offsetMin
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, m/60, m%60)
}

func Location(offsetMin int) *time.Location {
	if offsetMin == 0 {
		return time.UTC
	}
	return time.FixedZone(Name(offsetMin), offsetMin*60)
}

func NowIn(offsetMin int) time.Time {
	return time.Now().In(Location(offsetMin))
}

// ParseDate parses "YYYY-MM-DD" as local midnight in the given offset.
func ParseDate(dateStr string, offsetMin int) (time.Time, error) {
	return time.ParseInLocation(DateLayout, dateStr, Location(offsetMin))
}

// ParseDateTime parses "YYYY-MM-DD" + "HH:MM" as a local instant in the
// given offset.
func ParseDateTime(dateStr, timeStr string, offsetMin int) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, dateStr+" "+timeStr, Location(offsetMin))
}

// FormatTime renders the local "HH:MM" of an instant under the given offset.
func FormatTime(t time.Time, offsetMin int) string {
	return t.In(Location(offsetMin)).Format(TimeLayout)
}

// FormatDate renders the local calendar date of an instant under the given
// offset.
func FormatDate(t time.Time, offsetMin int) string {
	return t.In(Location(offsetMin)).Format(DateLayout)
}
