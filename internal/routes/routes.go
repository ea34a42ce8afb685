package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salonware/booking-api/internal/audit"
	"github.com/salonware/booking-api/internal/cache"
	"github.com/salonware/booking-api/internal/config"
	"github.com/salonware/booking-api/internal/handlers"
	infraRepo "github.com/salonware/booking-api/internal/infra/repository"
	"github.com/salonware/booking-api/internal/locking"
	"github.com/salonware/booking-api/internal/middleware"
	ucBooking "github.com/salonware/booking-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config) {

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	admissionLocks := locking.New()

	// A nil redis client keeps the cache in pass-through mode.
	availabilityCache := cache.NewAvailabilityCache(
		cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword),
		cfg.CacheTTL,
	)

	// ======================================================
	// USE CASES (BOOKING)
	// ======================================================
	availabilityUC := ucBooking.NewGetAvailability(
		bookingRepo,
		availabilityCache,
	)

	admitUC := ucBooking.NewAdmitBooking(
		bookingRepo,
		admissionLocks,
		auditDispatcher,
		availabilityCache,
	)

	cancelUC := ucBooking.NewCancelAppointment(
		bookingRepo,
		auditDispatcher,
		availabilityCache,
	)

	completeUC := ucBooking.NewCompleteAppointment(
		bookingRepo,
		auditDispatcher,
		availabilityCache,
	)

	listByDateUC := ucBooking.NewListAppointmentsByDate(
		bookingRepo,
	)

	listByMonthUC := ucBooking.NewListAppointmentsByMonth(
		bookingRepo,
	)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	salonHandler := handlers.NewSalonHandler(db)

	professionalHandler := handlers.NewProfessionalHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	weeklyAvailabilityHandler := handlers.NewWeeklyAvailabilityHandler(db, auditDispatcher, availabilityCache)
	loyaltyHandler := handlers.NewLoyaltyHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		admitUC,
		cancelUC,
		completeUC,
		listByDateUC,
		listByMonthUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(db, availabilityUC, admitUC)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC API
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/:slug/services", publicHandler.ListServices)
			publicAPI.GET("/:slug/professionals", publicHandler.ListProfessionals)
			publicAPI.GET("/:slug/availability", publicHandler.Availability)
			publicAPI.POST("/:slug/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// PRIVATE API
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/salon", salonHandler.GetMeSalon)
			secured.PATCH("/me/salon", salonHandler.UpdateMeSalon)

			secured.GET("/me/clients", clientHandler.List)
			secured.GET("/me/loyalty", loyaltyHandler.GetByPhone)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/professionals", professionalHandler.List)
			secured.POST("/me/professionals", professionalHandler.Create)
			secured.PATCH("/me/professionals/:id", professionalHandler.Update)

			secured.GET("/me/professionals/:id/availability", weeklyAvailabilityHandler.Get)
			secured.PUT("/me/professionals/:id/availability", weeklyAvailabilityHandler.Replace)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListByDate)
			secured.GET("/me/appointments/month", appointmentHandler.ListByMonth)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}
