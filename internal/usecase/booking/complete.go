package booking

import (
	"context"

	"github.com/salonware/booking-api/internal/audit"
	"github.com/salonware/booking-api/internal/cache"
	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/models"
	"github.com/salonware/booking-api/internal/tzoffset"
)

type CompleteAppointment struct {
	repo  domain.Repository
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache
}

func NewCompleteAppointment(
	repo domain.Repository,
	auditd *audit.Dispatcher,
	c *cache.AvailabilityCache,
) *CompleteAppointment {
	return &CompleteAppointment{
		repo:  repo,
		audit: auditd,
		cache: c,
	}
}

func (uc *CompleteAppointment) Execute(
	ctx context.Context,
	salonID uint,
	userID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	salon, err := uc.repo.GetSalonByID(ctx, salonID)
	if err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, salonID, appointmentID)
	if err != nil {
		return nil, err
	}

	now := tzoffset.NowIn(salon.UTCOffsetMin)
	if err := domain.Complete(ap, now); err != nil {
		return nil, err
	}

	// Persists the status change and accrues one loyalty attendance in the
	// same transaction.
	if err := uc.repo.StoreCompletion(ctx, salonID, ap); err != nil {
		return nil, err
	}

	uc.cache.InvalidateDay(
		ctx,
		salonID,
		ap.ProfessionalID,
		tzoffset.FormatDate(ap.StartTime, salon.UTCOffsetMin),
	)

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			SalonID:  salonID,
			UserID:   &userID,
			Action:   "appointment_completed",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	return ap, nil
}
