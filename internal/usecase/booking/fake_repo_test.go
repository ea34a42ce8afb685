package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/models"
)

// Missing rows follow the repository contract: the invalid_reference
// business code, never a raw not-found sentinel.
var errNotFound = httperr.ErrBusiness(httperr.CodeInvalidReference)

// fakeRepo is an in-memory Repository. AdmitAppointment holds the repo mutex
// for its whole check-and-insert, mirroring the transactional row locks of
// the real implementation.
type fakeRepo struct {
	mu sync.Mutex

	salon         *models.Salon
	professionals map[uint]*models.Professional
	services      map[uint]*models.Service
	availability  []*models.WeeklyAvailability
	clients       []*models.Client
	appointments  []*models.Appointment
	counters      map[string]*models.LoyaltyCounter

	nextID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		salon: &models.Salon{
			ID:           1,
			Name:         "Studio Norte",
			Slug:         "studio-norte",
			UTCOffsetMin: -180,
		},
		professionals: map[uint]*models.Professional{
			2: {ID: 2, SalonID: 1, Name: "Ana", Active: true},
		},
		services: map[uint]*models.Service{
			3: {ID: 3, SalonID: 1, Name: "Haircut", DurationMin: 30, Price: 50, Active: true},
			4: {ID: 4, SalonID: 1, Name: "Coloring", DurationMin: 60, Price: 120, Active: true},
		},
		availability: []*models.WeeklyAvailability{
			{
				ID: 1, SalonID: 1, ProfessionalID: 2, Weekday: 1,
				StartTime: "09:00", EndTime: "18:00",
				LunchStart: "12:00", LunchEnd: "13:00",
				Active: true,
			},
		},
		counters: map[string]*models.LoyaltyCounter{},
		nextID:   100,
	}
}

func (f *fakeRepo) GetSalonByID(_ context.Context, id uint) (*models.Salon, error) {
	if f.salon != nil && f.salon.ID == id {
		s := *f.salon
		return &s, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetSalonBySlug(_ context.Context, slug string) (*models.Salon, error) {
	if f.salon != nil && f.salon.Slug == slug {
		s := *f.salon
		return &s, nil
	}
	return nil, errNotFound
}

func (f *fakeRepo) GetProfessional(_ context.Context, salonID, professionalID uint) (*models.Professional, error) {
	p, ok := f.professionals[professionalID]
	if !ok || p.SalonID != salonID {
		return nil, errNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetService(_ context.Context, salonID, serviceID uint) (*models.Service, error) {
	s, ok := f.services[serviceID]
	if !ok || s.SalonID != salonID {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeRepo) GetWeeklyAvailability(_ context.Context, salonID, professionalID uint, weekday int) (*models.WeeklyAvailability, error) {
	rows := make([]*models.WeeklyAvailability, 0)
	for _, av := range f.availability {
		if av.SalonID == salonID && av.ProfessionalID == professionalID && av.Weekday == weekday && av.Active {
			rows = append(rows, av)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	cp := *rows[0]
	return &cp, nil
}

func (f *fakeRepo) GetOrCreateClient(_ context.Context, salonID uint, name, phone string) (*models.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.clients {
		if c.SalonID == salonID && c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}

	f.nextID++
	c := &models.Client{ID: f.nextID, SalonID: salonID, Name: name, Phone: phone}
	f.clients = append(f.clients, c)
	cp := *c
	return &cp, nil
}

func (f *fakeRepo) ListAppointmentsForDay(_ context.Context, salonID, professionalID uint, dayStart, dayEnd time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.SalonID != salonID || ap.ProfessionalID != professionalID {
			continue
		}
		if ap.Status == string(domain.StatusCancelled) {
			continue
		}
		if ap.StartTime.Before(dayStart) || !ap.StartTime.Before(dayEnd) {
			continue
		}
		out = append(out, *ap)
	}
	return out, nil
}

func (f *fakeRepo) ListAppointmentsForPeriod(_ context.Context, salonID, professionalID uint, start, end time.Time) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Appointment
	for _, ap := range f.appointments {
		if ap.SalonID != salonID || ap.ProfessionalID != professionalID {
			continue
		}
		if ap.StartTime.Before(start) || !ap.StartTime.Before(end) {
			continue
		}
		out = append(out, *ap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (f *fakeRepo) GetAppointment(_ context.Context, salonID, appointmentID uint) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ap := range f.appointments {
		if ap.ID == appointmentID && ap.SalonID == salonID {
			cp := *ap
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeRepo) AdmitAppointment(_ context.Context, salonID uint, ap *models.Appointment, clientPhone string, redeemReward bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.appointments {
		if existing.SalonID != salonID || existing.ProfessionalID != ap.ProfessionalID {
			continue
		}
		if existing.Status == string(domain.StatusCancelled) {
			continue
		}
		if domain.Overlaps(ap.StartTime, ap.EndTime, existing.StartTime, existing.EndTime) {
			return httperr.ErrBusiness(httperr.CodeSlotConflict)
		}
	}

	if redeemReward {
		counter := f.counters[clientPhone]
		if counter == nil || counter.EligibleRewards() <= 0 {
			return httperr.ErrBusiness(httperr.CodeRewardNotAvailable)
		}
		counter.RewardsUsed++
	}

	f.nextID++
	ap.ID = f.nextID
	stored := *ap
	f.appointments = append(f.appointments, &stored)
	return nil
}

func (f *fakeRepo) StoreCancellation(_ context.Context, salonID uint, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.appointments {
		if existing.ID == ap.ID && existing.SalonID == salonID {
			stored := *ap
			f.appointments[i] = &stored
			if ap.RewardRedeemed {
				if counter := f.counterForClient(salonID, ap.ClientID); counter != nil && counter.RewardsUsed > 0 {
					counter.RewardsUsed--
				}
			}
			return nil
		}
	}
	return errNotFound
}

func (f *fakeRepo) StoreCompletion(_ context.Context, salonID uint, ap *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.appointments {
		if existing.ID == ap.ID && existing.SalonID == salonID {
			stored := *ap
			f.appointments[i] = &stored

			phone := f.phoneForClient(ap.ClientID)
			counter := f.counters[phone]
			if counter == nil {
				counter = &models.LoyaltyCounter{SalonID: salonID, ClientPhone: phone}
				f.counters[phone] = counter
			}
			counter.Attendances++
			return nil
		}
	}
	return errNotFound
}

func (f *fakeRepo) GetLoyaltyCounter(_ context.Context, salonID uint, phone string) (*models.LoyaltyCounter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if counter, ok := f.counters[phone]; ok {
		cp := *counter
		return &cp, nil
	}
	return &models.LoyaltyCounter{SalonID: salonID, ClientPhone: phone}, nil
}

func (f *fakeRepo) phoneForClient(clientID uint) string {
	for _, c := range f.clients {
		if c.ID == clientID {
			return c.Phone
		}
	}
	return ""
}

func (f *fakeRepo) counterForClient(salonID, clientID uint) *models.LoyaltyCounter {
	phone := f.phoneForClient(clientID)
	counter, ok := f.counters[phone]
	if !ok || counter.SalonID != salonID {
		return nil
	}
	return counter
}

var _ domain.Repository = (*fakeRepo)(nil)
