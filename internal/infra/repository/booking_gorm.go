package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/salonware/booking-api/internal/domain/booking"
	"github.com/salonware/booking-api/internal/httperr"
	"github.com/salonware/booking-api/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// translateNotFound maps a missing row onto the invalid_reference business
// code. Infrastructure failures pass through untouched, so callers can tell
// "this id does not exist" (not retryable) from "the store is down"
// (retryable).
func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return httperr.ErrBusiness(httperr.CodeInvalidReference)
	}
	return err
}

// --------------------------------------------------
// Salon (tenant)
// --------------------------------------------------

func (r *BookingGormRepository) GetSalonByID(
	ctx context.Context,
	id uint,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).First(&salon, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &salon, nil
}

func (r *BookingGormRepository) GetSalonBySlug(
	ctx context.Context,
	slug string,
) (*models.Salon, error) {

	var salon models.Salon
	if err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&salon).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &salon, nil
}

// --------------------------------------------------
// Catalog
// --------------------------------------------------

func (r *BookingGormRepository) GetProfessional(
	ctx context.Context,
	salonID uint,
	professionalID uint,
) (*models.Professional, error) {

	var pro models.Professional
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", professionalID, salonID).
		First(&pro).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &pro, nil
}

func (r *BookingGormRepository) GetService(
	ctx context.Context,
	salonID uint,
	serviceID uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", serviceID, salonID).
		First(&svc).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &svc, nil
}

// --------------------------------------------------
// Weekly availability
// --------------------------------------------------

func (r *BookingGormRepository) GetWeeklyAvailability(
	ctx context.Context,
	salonID uint,
	professionalID uint,
	weekday int,
) (*models.WeeklyAvailability, error) {

	// Duplicate rows per weekday are tolerated in the data; the lowest id
	// active row wins.
	var av models.WeeklyAvailability
	err := r.db.WithContext(ctx).
		Where(
			"salon_id = ? AND professional_id = ? AND weekday = ? AND active = true",
			salonID, professionalID, weekday,
		).
		Order("id ASC").
		First(&av).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &av, nil
}

// --------------------------------------------------
// Client
// --------------------------------------------------

func (r *BookingGormRepository) GetOrCreateClient(
	ctx context.Context,
	salonID uint,
	name string,
	phone string,
) (*models.Client, error) {

	var client models.Client
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND phone = ?", salonID, phone).
		First(&client).Error

	if err == nil {
		return &client, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	client = models.Client{
		SalonID: salonID,
		Name:    name,
		Phone:   phone,
	}

	if err := r.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}

	return &client, nil
}

// --------------------------------------------------
// Appointments (read)
// --------------------------------------------------

func (r *BookingGormRepository) ListAppointmentsForDay(
	ctx context.Context,
	salonID uint,
	professionalID uint,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Select("start_time", "end_time", "status").
		Where(
			"salon_id = ? AND professional_id = ? AND status <> ? AND start_time >= ? AND start_time < ?",
			salonID, professionalID, string(domain.StatusCancelled), dayStart, dayEnd,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *BookingGormRepository) ListAppointmentsForPeriod(
	ctx context.Context,
	salonID uint,
	professionalID uint,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Where(
			"salon_id = ? AND professional_id = ? AND start_time >= ? AND start_time < ?",
			salonID, professionalID, start, end,
		).
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *BookingGormRepository) GetAppointment(
	ctx context.Context,
	salonID uint,
	appointmentID uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Where("id = ? AND salon_id = ?", appointmentID, salonID).
		First(&ap).Error; err != nil {
		return nil, translateNotFound(err)
	}

	return &ap, nil
}

// --------------------------------------------------
// Admission (atomic commit)
// --------------------------------------------------

// AdmitAppointment is the authoritative write-time check plus commit. An
// advisory transaction lock keyed on the professional serializes writers
// across processes; a FOR UPDATE over the overlap range would lock nothing
// when the range is empty, letting two instances both count zero and both
// insert. The second writer blocks on the advisory lock until this
// transaction ends, then sees the committed row and fails with
// slot_conflict. Loyalty consumption shares the same transaction: either
// everything commits or nothing does.
func (r *BookingGormRepository) AdmitAppointment(
	ctx context.Context,
	salonID uint,
	ap *models.Appointment,
	clientPhone string,
	redeemReward bool,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {

		if err := tx.Exec(
			"SELECT pg_advisory_xact_lock(?)",
			admissionLockKey(salonID, ap.ProfessionalID),
		).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.
			Model(&models.Appointment{}).
			Where(
				"salon_id = ? AND professional_id = ? AND status <> ? AND start_time < ? AND end_time > ?",
				salonID,
				ap.ProfessionalID,
				string(domain.StatusCancelled),
				ap.EndTime,
				ap.StartTime,
			).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			return httperr.ErrBusiness(httperr.CodeSlotConflict)
		}

		if redeemReward {
			counter, err := lockLoyaltyCounter(tx, salonID, clientPhone)
			if err != nil {
				return err
			}
			if counter == nil || counter.EligibleRewards() <= 0 {
				return httperr.ErrBusiness(httperr.CodeRewardNotAvailable)
			}
			counter.RewardsUsed++
			if err := tx.Save(counter).Error; err != nil {
				return err
			}
		}

		return tx.Create(ap).Error
	})
}

// --------------------------------------------------
// State change + loyalty side effects
// --------------------------------------------------

func (r *BookingGormRepository) StoreCancellation(
	ctx context.Context,
	salonID uint,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		// A reward consumed for a service never rendered goes back.
		if ap.RewardRedeemed {
			phone, err := clientPhoneFor(tx, salonID, ap.ClientID)
			if err != nil {
				return err
			}
			counter, err := lockLoyaltyCounter(tx, salonID, phone)
			if err != nil {
				return err
			}
			if counter != nil && counter.RewardsUsed > 0 {
				counter.RewardsUsed--
				if err := tx.Save(counter).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

func (r *BookingGormRepository) StoreCompletion(
	ctx context.Context,
	salonID uint,
	ap *models.Appointment,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(ap).Error; err != nil {
			return err
		}

		phone, err := clientPhoneFor(tx, salonID, ap.ClientID)
		if err != nil {
			return err
		}

		counter, err := lockLoyaltyCounter(tx, salonID, phone)
		if err != nil {
			return err
		}
		if counter == nil {
			counter = &models.LoyaltyCounter{
				SalonID:     salonID,
				ClientPhone: phone,
			}
		}
		counter.Attendances++

		return tx.Save(counter).Error
	})
}

// --------------------------------------------------
// Loyalty
// --------------------------------------------------

func (r *BookingGormRepository) GetLoyaltyCounter(
	ctx context.Context,
	salonID uint,
	phone string,
) (*models.LoyaltyCounter, error) {

	var counter models.LoyaltyCounter
	err := r.db.WithContext(ctx).
		Where("salon_id = ? AND client_phone = ?", salonID, phone).
		First(&counter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.LoyaltyCounter{SalonID: salonID, ClientPhone: phone}, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func lockLoyaltyCounter(tx *gorm.DB, salonID uint, phone string) (*models.LoyaltyCounter, error) {
	var counter models.LoyaltyCounter
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("salon_id = ? AND client_phone = ?", salonID, phone).
		First(&counter).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &counter, nil
}

func clientPhoneFor(tx *gorm.DB, salonID uint, clientID uint) (string, error) {
	var client models.Client
	if err := tx.
		Where("id = ? AND salon_id = ?", clientID, salonID).
		First(&client).Error; err != nil {
		return "", err
	}
	return client.Phone, nil
}

// admissionLockKey derives the advisory lock key serializing admissions for
// one professional. Deliberately coarser than per-day: two overlapping
// candidates always share the key, even when they straddle a date boundary.
func admissionLockKey(salonID, professionalID uint) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "admission:%d:%d", salonID, professionalID)
	return int64(h.Sum64())
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
