package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonware/booking-api/internal/audit"
	"github.com/salonware/booking-api/internal/cache"
	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/middleware"
	"github.com/salonware/booking-api/internal/models"
)

type WeeklyAvailabilityHandler struct {
	db    *gorm.DB
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache
}

func NewWeeklyAvailabilityHandler(
	db *gorm.DB,
	auditd *audit.Dispatcher,
	c *cache.AvailabilityCache,
) *WeeklyAvailabilityHandler {
	return &WeeklyAvailabilityHandler{db: db, audit: auditd, cache: c}
}

type WeekdayConfig struct {
	Weekday    int    `json:"weekday" binding:"min=0,max=6"`
	Active     bool   `json:"active"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	LunchStart string `json:"lunch_start"`
	LunchEnd   string `json:"lunch_end"`
}

type WeeklyAvailabilityUpdateRequest struct {
	Days []WeekdayConfig `json:"days" binding:"required"`
}

func (h *WeeklyAvailabilityHandler) professionalInSalon(c *gin.Context, salonID uint) (*models.Professional, bool) {
	id := c.Param("id")

	var professional models.Professional
	if err := h.db.
		Where("id = ? AND salon_id = ?", id, salonID).
		First(&professional).Error; err != nil {

		httperr.NotFound(c, "professional_not_found", "Professional not found.")
		return nil, false
	}
	return &professional, true
}

func (h *WeeklyAvailabilityHandler) Get(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	professional, ok := h.professionalInSalon(c, salonID)
	if !ok {
		return
	}

	var days []models.WeeklyAvailability
	if err := h.db.
		Where("salon_id = ? AND professional_id = ?", salonID, professional.ID).
		Order("weekday ASC, id ASC").
		Find(&days).Error; err != nil {

		httperr.Internal(c, "failed_to_get_availability", "Could not load weekly availability.")
		return
	}

	c.JSON(http.StatusOK, days)
}

// Replace swaps the professional's whole week in one transaction, so
// readers never observe a half-written schedule.
func (h *WeeklyAvailabilityHandler) Replace(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	professional, ok := h.professionalInSalon(c, salonID)
	if !ok {
		return
	}

	var req WeeklyAvailabilityUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	for _, d := range req.Days {
		if d.Active {
			if msg := validateWeekday(d); msg != "" {
				httperr.BadRequest(c, "invalid_weekday_config", msg)
				return
			}
		}
	}

	var toCreate []models.WeeklyAvailability
	for _, d := range req.Days {
		toCreate = append(toCreate, models.WeeklyAvailability{
			SalonID:        salonID,
			ProfessionalID: professional.ID,
			Weekday:        d.Weekday,
			Active:         d.Active,
			StartTime:      d.StartTime,
			EndTime:        d.EndTime,
			LunchStart:     d.LunchStart,
			LunchEnd:       d.LunchEnd,
		})
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("salon_id = ? AND professional_id = ?", salonID, professional.ID).
			Delete(&models.WeeklyAvailability{}).Error; err != nil {
			return err
		}

		if len(toCreate) > 0 {
			if err := tx.Create(&toCreate).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		httperr.Internal(c, "failed_to_save_availability", "Could not save weekly availability.")
		return
	}

	// Cached listings reflect the old schedule; drop them all for this
	// professional, not just one day.
	h.cache.InvalidateProfessional(c.Request.Context(), salonID, professional.ID)

	userID := c.MustGet(middleware.ContextUserID).(uint)
	h.audit.Dispatch(audit.Event{
		SalonID:  salonID,
		UserID:   &userID,
		Action:   "availability_replaced",
		Entity:   "professional",
		EntityID: &professional.ID,
	})

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// validateWeekday checks an active day's window: HH:MM times, start
// before end, and the lunch pause (both bounds or neither) strictly
// inside the window. Returns "" when valid.
func validateWeekday(d WeekdayConfig) string {
	start, err := time.Parse(domain.TimeLayoutHM, d.StartTime)
	if err != nil {
		return "start_time must be HH:MM."
	}

	end, err := time.Parse(domain.TimeLayoutHM, d.EndTime)
	if err != nil {
		return "end_time must be HH:MM."
	}

	if !start.Before(end) {
		return "start_time must be before end_time."
	}

	if (d.LunchStart == "") != (d.LunchEnd == "") {
		return "lunch_start and lunch_end must be set together."
	}

	if d.LunchStart != "" {
		ls, err := time.Parse(domain.TimeLayoutHM, d.LunchStart)
		if err != nil {
			return "lunch_start must be HH:MM."
		}

		le, err := time.Parse(domain.TimeLayoutHM, d.LunchEnd)
		if err != nil {
			return "lunch_end must be HH:MM."
		}

		if !ls.Before(le) {
			return "lunch_start must be before lunch_end."
		}
		if ls.Before(start) || le.After(end) {
			return "lunch must be inside the working window."
		}
	}

	return ""
}
