package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/salonware/booking-api/internal/audit"
	"github.com/salonware/booking-api/internal/cache"
	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/locking"
	"github.com/salonware/booking-api/internal/models"
	"github.com/salonware/booking-api/internal/tzoffset"
	"github.com/salonware/booking-api/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type AdmitBookingInput struct {
	SalonID        uint
	ProfessionalID uint
	ServiceID      uint

	ClientName  string
	ClientPhone string

	Date string // YYYY-MM-DD, tenant-local
	Time string // HH:MM, tenant-local

	Notes        string
	RedeemReward bool
}

// ======================================================
// USE CASE
// ======================================================

// AdmitBooking is the single write path for appointments: it either commits
// exactly one scheduled appointment or fails without mutating state.
type AdmitBooking struct {
	repo  domain.Repository
	locks *locking.Keyed
	audit *audit.Dispatcher
	cache *cache.AvailabilityCache

	Now func() time.Time
}

func NewAdmitBooking(
	repo domain.Repository,
	locks *locking.Keyed,
	auditd *audit.Dispatcher,
	c *cache.AvailabilityCache,
) *AdmitBooking {
	return &AdmitBooking{
		repo:  repo,
		locks: locks,
		audit: auditd,
		cache: c,
		Now:   time.Now,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *AdmitBooking) Execute(
	ctx context.Context,
	in AdmitBookingInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Salon (tenant) and its fixed offset
	// --------------------------------------------------
	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return nil, err
	}

	offset := salon.UTCOffsetMin
	loc := tzoffset.Location(offset)

	start, err := tzoffset.ParseDateTime(in.Date, in.Time, offset)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date_or_time")
	}

	// --------------------------------------------------
	// 2. Strictly in the future (plus salon lead time)
	// --------------------------------------------------
	now := uc.Now().In(loc)

	threshold := now
	if salon.MinAdvanceMinutes > 0 {
		threshold = now.Add(time.Duration(salon.MinAdvanceMinutes) * time.Minute)
	}
	if !start.After(threshold) {
		return nil, httperr.ErrBusiness(httperr.CodePastSlot)
	}

	// --------------------------------------------------
	// 3. Professional and service, tenant-scoped
	// --------------------------------------------------
	pro, err := uc.repo.GetProfessional(ctx, salon.ID, in.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if !pro.Active {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidReference)
	}

	svc, err := uc.repo.GetService(ctx, salon.ID, in.ServiceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, httperr.ErrBusiness(httperr.CodeInvalidReference)
	}

	duration := time.Duration(svc.DurationMin) * time.Minute
	end := start.Add(duration)

	if !validators.IsPhoneValid(in.ClientPhone) {
		return nil, httperr.ErrBusiness("invalid_phone")
	}
	phone := validators.NormalizePhone(in.ClientPhone)

	// --------------------------------------------------
	// 4. Requested start must be a generator-emitted boundary
	// --------------------------------------------------
	av, err := uc.repo.GetWeeklyAvailability(ctx, salon.ID, pro.ID, int(start.Weekday()))
	if err != nil {
		return nil, err
	}

	window, ok := domain.WindowFromAvailability(av, start, loc)
	if !ok {
		return nil, httperr.ErrBusiness(httperr.CodeOutsideAvailability)
	}

	emitted := domain.FitWithin(
		domain.GenerateSlots(window, domain.Granularity, now),
		duration,
		window.End,
	)
	if !containsStart(emitted, start) {
		return nil, httperr.ErrBusiness(httperr.CodeOutsideAvailability)
	}
	if window.HasLunch && domain.Overlaps(start, end, window.LunchStart, window.LunchEnd) {
		return nil, httperr.ErrBusiness(httperr.CodeOutsideAvailability)
	}

	// --------------------------------------------------
	// 5. Client (get or create, keyed by phone)
	// --------------------------------------------------
	client, err := uc.repo.GetOrCreateClient(ctx, salon.ID, in.ClientName, phone)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 6. Serialize per professional-day, re-validate, commit
	// --------------------------------------------------
	dateStr := tzoffset.FormatDate(start, offset)
	unlock := uc.locks.Lock(locking.AdmissionKey(salon.ID, pro.ID, dateStr))
	defer unlock()

	dayStart, _ := tzoffset.ParseDate(dateStr, offset)
	latest, err := uc.repo.ListAppointmentsForDay(
		ctx,
		salon.ID,
		pro.ID,
		dayStart,
		dayStart.Add(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	requested := []domain.Slot{{Start: start, End: end}}
	if len(domain.FilterConflicts(requested, duration, domain.BusyIntervals(latest))) == 0 {
		return nil, httperr.ErrBusiness(httperr.CodeSlotConflict)
	}

	ap := &models.Appointment{
		Reference:      uuid.New(),
		SalonID:        salon.ID,
		ProfessionalID: pro.ID,
		ClientID:       client.ID,
		ServiceID:      svc.ID,
		StartTime:      start,
		EndTime:        end,
		Status:         string(domain.InitialStatus()),
		RewardRedeemed: in.RedeemReward,
		Notes:          in.Notes,
	}

	// Authoritative check + insert + loyalty consume, one transaction.
	if err := uc.repo.AdmitAppointment(ctx, salon.ID, ap, phone, in.RedeemReward); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 7. Side effects off the critical path
	// --------------------------------------------------
	uc.cache.InvalidateDay(ctx, salon.ID, pro.ID, dateStr)

	if uc.audit != nil {
		uc.audit.Dispatch(audit.Event{
			SalonID:  salon.ID,
			Action:   "appointment_admitted",
			Entity:   "appointment",
			EntityID: &ap.ID,
		})
	}

	return ap, nil
}

func containsStart(slots []domain.Slot, start time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true
		}
	}
	return false
}
