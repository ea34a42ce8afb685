package booking

import (
	"context"
	"time"

	"github.com/salonware/booking-api/internal/models"
)

// Repository is the tenant-scoped persistence boundary. Every method takes
// the salon id explicitly; implementations must predicate every query on it.
// There is no default tenant.
//
// Lookups for a missing or out-of-tenant row fail with the invalid_reference
// business code; any other error means the store itself failed and is safe
// to retry.
type Repository interface {
	// -------- Salon (tenant) --------
	GetSalonByID(
		ctx context.Context,
		id uint,
	) (*models.Salon, error)

	GetSalonBySlug(
		ctx context.Context,
		slug string,
	) (*models.Salon, error)

	// -------- Catalog --------
	GetProfessional(
		ctx context.Context,
		salonID uint,
		professionalID uint,
	) (*models.Professional, error)

	GetService(
		ctx context.Context,
		salonID uint,
		serviceID uint,
	) (*models.Service, error)

	// -------- Weekly availability --------
	// Returns (nil, nil) when the weekday has no active record; duplicate
	// rows are resolved by lowest id.
	GetWeeklyAvailability(
		ctx context.Context,
		salonID uint,
		professionalID uint,
		weekday int,
	) (*models.WeeklyAvailability, error)

	// -------- Client --------
	GetOrCreateClient(
		ctx context.Context,
		salonID uint,
		name string,
		phone string,
	) (*models.Client, error)

	// -------- Appointments (read) --------
	ListAppointmentsForDay(
		ctx context.Context,
		salonID uint,
		professionalID uint,
		dayStart time.Time,
		dayEnd time.Time,
	) ([]models.Appointment, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		salonID uint,
		professionalID uint,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	GetAppointment(
		ctx context.Context,
		salonID uint,
		appointmentID uint,
	) (*models.Appointment, error)

	// -------- Admission (atomic commit) --------
	// Re-checks for overlap under an admission lock, inserts the
	// appointment and, when redeemReward is set, consumes one loyalty
	// reward, all in a single transaction. Returns slot_conflict /
	// reward_not_available business errors without mutating anything.
	AdmitAppointment(
		ctx context.Context,
		salonID uint,
		ap *models.Appointment,
		clientPhone string,
		redeemReward bool,
	) error

	// -------- State change + loyalty side effects --------
	StoreCancellation(
		ctx context.Context,
		salonID uint,
		ap *models.Appointment,
	) error

	StoreCompletion(
		ctx context.Context,
		salonID uint,
		ap *models.Appointment,
	) error

	// -------- Loyalty --------
	GetLoyaltyCounter(
		ctx context.Context,
		salonID uint,
		phone string,
	) (*models.LoyaltyCounter, error)
}
