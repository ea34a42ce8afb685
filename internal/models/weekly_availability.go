package models

import "time"

// WeeklyAvailability is one weekday's recurring window for a professional.
// Times are tenant-local "HH:MM" strings; lunch fields are both set or both
// empty. The table carries no uniqueness constraint on (professional, weekday),
// so readers must order by id and take the first active row.
type WeeklyAvailability struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	SalonID        uint `gorm:"index" json:"salon_id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Weekday int `json:"weekday"`

	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
	Active     bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
