package models

import "time"

// LoyaltyCounter tracks attendances and consumed rewards per (salon, phone).
// One free service for every ten completed attendances.
type LoyaltyCounter struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	SalonID uint `gorm:"index:idx_loyalty_salon_phone" json:"salon_id"`

	ClientPhone string `gorm:"size:20;index:idx_loyalty_salon_phone" json:"client_phone"`

	Attendances int `gorm:"default:0" json:"attendances"`
	RewardsUsed int `gorm:"default:0" json:"rewards_used"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *LoyaltyCounter) EligibleRewards() int {
	eligible := c.Attendances/10 - c.RewardsUsed
	if eligible < 0 {
		return 0
	}
	return eligible
}
