package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/middleware"
	"github.com/salonware/booking-api/internal/models"
	"github.com/salonware/booking-api/internal/validators"
)

type LoyaltyHandler struct {
	db *gorm.DB
}

func NewLoyaltyHandler(db *gorm.DB) *LoyaltyHandler {
	return &LoyaltyHandler{db: db}
}

// GetByPhone returns the loyalty counter for one client phone. A client
// without a counter yet is reported with zeroed values, not a 404.
func (h *LoyaltyHandler) GetByPhone(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	rawPhone := c.Query("phone")
	if !validators.IsPhoneValid(rawPhone) {
		httperr.BadRequest(c, "invalid_phone", "Query param phone must have 8 to 15 digits.")
		return
	}
	phone := validators.NormalizePhone(rawPhone)

	var counter models.LoyaltyCounter
	err := h.db.
		Where("salon_id = ? AND client_phone = ?", salonID, phone).
		First(&counter).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{
				"client_phone":     phone,
				"attendances":      0,
				"rewards_used":     0,
				"eligible_rewards": 0,
			})
			return
		}
		httperr.Internal(c, "failed_to_get_loyalty", "Could not load loyalty counter.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_phone":     counter.ClientPhone,
		"attendances":      counter.Attendances,
		"rewards_used":     counter.RewardsUsed,
		"eligible_rewards": counter.EligibleRewards(),
	})
}
