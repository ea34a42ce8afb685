package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/middleware"
	"github.com/salonware/booking-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

// AppointmentHandler is the staff-facing appointment surface. Every
// write goes through the same admission use case as the public one.
type AppointmentHandler struct {
	admitUC       *booking.AdmitBooking
	cancelUC      *booking.CancelAppointment
	completeUC    *booking.CompleteAppointment
	listByDateUC  *booking.ListAppointmentsByDate
	listByMonthUC *booking.ListAppointmentsByMonth
}

func NewAppointmentHandler(
	admitUC *booking.AdmitBooking,
	cancelUC *booking.CancelAppointment,
	completeUC *booking.CompleteAppointment,
	listByDateUC *booking.ListAppointmentsByDate,
	listByMonthUC *booking.ListAppointmentsByMonth,
) *AppointmentHandler {
	return &AppointmentHandler{
		admitUC:       admitUC,
		cancelUC:      cancelUC,
		completeUC:    completeUC,
		listByDateUC:  listByDateUC,
		listByMonthUC: listByMonthUC,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientName     string `json:"client_name" binding:"required"`
	ClientPhone    string `json:"client_phone" binding:"required"`
	ProfessionalID uint   `json:"professional_id" binding:"required"`
	ServiceID      uint   `json:"service_id" binding:"required"`
	Date           string `json:"date" binding:"required"` // YYYY-MM-DD
	Time           string `json:"time" binding:"required"` // HH:MM
	Notes          string `json:"notes"`
	RedeemReward   bool   `json:"redeem_reward"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request body.")
		return
	}

	ap, err := h.admitUC.Execute(
		c.Request.Context(),
		booking.AdmitBookingInput{
			SalonID:        salonID,
			ProfessionalID: req.ProfessionalID,
			ServiceID:      req.ServiceID,
			ClientName:     req.ClientName,
			ClientPhone:    req.ClientPhone,
			Date:           req.Date,
			Time:           req.Time,
			Notes:          req.Notes,
			RedeemReward:   req.RedeemReward,
		},
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ap)
}

// ======================================================
// LIST BY DATE
// ======================================================

func (h *AppointmentHandler) ListByDate(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Query param date (YYYY-MM-DD) is required.")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	professionalID, ok := queryUint(c, "professional_id")
	if !ok {
		return
	}

	list, err := h.listByDateUC.Execute(
		c.Request.Context(),
		salonID,
		professionalID,
		date,
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":         dateStr,
		"appointments": list,
	})
}

// ======================================================
// LIST BY MONTH
// ======================================================

func (h *AppointmentHandler) ListByMonth(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Query param year is required.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Query param month must be 1-12.")
		return
	}

	professionalID, ok := queryUint(c, "professional_id")
	if !ok {
		return
	}

	list, err := h.listByMonthUC.Execute(
		c.Request.Context(),
		salonID,
		professionalID,
		year,
		month,
	)
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"year":         year,
		"month":        month,
		"appointments": list,
	})
}

// ======================================================
// CANCEL / COMPLETE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.cancelUC.Execute(c.Request.Context(), salonID, userID, uint(id))
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

func (h *AppointmentHandler) Complete(c *gin.Context) {
	salonID := c.MustGet(middleware.ContextSalonID).(uint)
	userID := c.MustGet(middleware.ContextUserID).(uint)

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return
	}

	ap, err := h.completeUC.Execute(c.Request.Context(), salonID, userID, uint(id))
	if err != nil {
		mapBookingError(c, err)
		return
	}

	c.JSON(http.StatusOK, ap)
}

// queryUint reads a required uint query param, writing the error response
// itself when missing or malformed.
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		httperr.BadRequest(c, "missing_"+name, "Query param "+name+" is required.")
		return 0, false
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		httperr.BadRequest(c, "invalid_"+name, "Query param "+name+" must be numeric.")
		return 0, false
	}
	return uint(v), true
}
