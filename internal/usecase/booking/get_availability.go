package booking

import (
	"context"
	"time"

	"github.com/salonware/booking-api/internal/cache"
	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/tzoffset"
)

type GetAvailability struct {
	repo  domain.Repository
	cache *cache.AvailabilityCache

	// Now is the clock; overridable in tests so slot generation stays
	// deterministic.
	Now func() time.Time
}

func NewGetAvailability(repo domain.Repository, c *cache.AvailabilityCache) *GetAvailability {
	return &GetAvailability{
		repo:  repo,
		cache: c,
		Now:   time.Now,
	}
}

func (uc *GetAvailability) Execute(
	ctx context.Context,
	in domain.AvailabilityInput,
) (domain.AvailabilityResult, error) {

	var empty domain.AvailabilityResult

	salon, err := uc.repo.GetSalonByID(ctx, in.SalonID)
	if err != nil {
		return empty, err
	}

	svc, err := uc.repo.GetService(ctx, salon.ID, in.ServiceID)
	if err != nil {
		return empty, err
	}
	if !svc.Active {
		return empty, httperr.ErrBusiness(httperr.CodeInvalidReference)
	}

	pro, err := uc.repo.GetProfessional(ctx, salon.ID, in.ProfessionalID)
	if err != nil {
		return empty, err
	}
	if !pro.Active {
		return empty, httperr.ErrBusiness(httperr.CodeInvalidReference)
	}

	offset := salon.UTCOffsetMin
	loc := tzoffset.Location(offset)
	date := in.Date.In(loc)
	dateStr := tzoffset.FormatDate(date, offset)

	var cached domain.AvailabilityResult
	if uc.cache.Get(ctx, salon.ID, pro.ID, dateStr, svc.ID, &cached) {
		return cached, nil
	}

	av, err := uc.repo.GetWeeklyAvailability(ctx, salon.ID, pro.ID, int(date.Weekday()))
	if err != nil {
		return empty, err
	}

	window, ok := domain.WindowFromAvailability(av, date, loc)
	if !ok {
		// Normal outcome: the professional simply does not work this day.
		return domain.AvailabilityResult{
			Slots:  []string{},
			Reason: domain.ReasonNoAvailability,
		}, nil
	}

	now := uc.Now().In(loc)
	duration := time.Duration(svc.DurationMin) * time.Minute

	candidates := domain.GenerateSlots(window, domain.Granularity, now)
	candidates = domain.FitWithin(candidates, duration, window.End)

	appointments, err := uc.repo.ListAppointmentsForDay(
		ctx,
		salon.ID,
		pro.ID,
		date,
		date.Add(24*time.Hour),
	)
	if err != nil {
		return empty, err
	}

	busy := domain.BusyIntervals(appointments)
	// The generator only blocks granularity-width lunch hits; a longer
	// service must not run into lunch either.
	if window.HasLunch {
		busy = append(busy, domain.Interval{Start: window.LunchStart, End: window.LunchEnd})
	}

	admissible := domain.FilterConflicts(candidates, duration, busy)

	out := make([]string, 0, len(admissible))
	for _, s := range admissible {
		out = append(out, tzoffset.FormatTime(s.Start, offset))
	}

	result := domain.AvailabilityResult{Slots: out}
	if len(out) == 0 {
		result.Reason = domain.ReasonFullyBooked
	}

	uc.cache.Set(ctx, salon.ID, pro.ID, dateStr, svc.ID, result)

	return result, nil
}
