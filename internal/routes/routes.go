package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BruksfildServices01/barbershop-admin/internal/audit"
	"github.com/BruksfildServices01/barbershop-admin/internal/auth"
	"github.com/BruksfildServices01/barbershop-admin/internal/config"
	"github.com/BruksfildServices01/barbershop-admin/internal/handlers"
	"github.com/BruksfildServices01/barbershop-admin/internal/httperr"
	"github.com/BruksfildServices01/barbershop-admin/internal/httpresp"
	"github.com/BruksfildServices01/barbershop-admin/internal/logger"
	"github.com/BruksfildServices01/barbershop-admin/internal/media"
	"github.com/BruksfildServices01/barbershop-admin/internal/middleware"
	"github.com/BruksfildServices01/barbershop-admin/internal/store"
	"github.com/BruksfildServices01/barbershop-admin/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barbershop-admin/internal/usecase/appointment"
	ucDashboard "github.com/BruksfildServices01/barbershop-admin/internal/usecase/dashboard"
)

// Deps are the singletons built in main.
type Deps struct {
	Config   *config.Config
	Hub      *store.Hub
	Auth     *auth.Service
	Audit    audit.Recorder
	AuditLog *audit.Logger
	Uploader *media.Uploader
	Clock    timezone.Clock
	Log      *logger.Logger
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	slotInterval := time.Duration(d.Config.SlotInterval) * time.Minute
	minAdvance := time.Duration(d.Config.MinAdvanceMinutes) * time.Minute
	catalog := d.Hub.Catalog()

	bookUC := ucAppointment.NewBookAppointment(d.Hub.Appointments, catalog, d.Audit, d.Clock, slotInterval, minAdvance)
	availabilityUC := ucAppointment.NewGetAvailability(d.Hub.Appointments, catalog, slotInterval)
	listUC := ucAppointment.NewListAppointments(d.Hub.Appointments)
	changeStatusUC := ucAppointment.NewChangeStatus(d.Hub.Appointments, d.Audit)
	deleteUC := ucAppointment.NewDeleteAppointment(d.Hub.Appointments, d.Audit)

	dashboardUC := ucDashboard.New(catalog, d.Clock)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.Auth, d.Audit)
	publicHandler := handlers.NewPublicHandler(d.Hub, bookUC, availabilityUC)
	appointmentHandler := handlers.NewAppointmentHandler(listUC, changeStatusUC, deleteUC)
	barberHandler := handlers.NewBarberHandler(d.Hub, d.Audit, d.Uploader)
	serviceHandler := handlers.NewServiceHandler(d.Hub, d.Audit)
	galleryHandler := handlers.NewGalleryHandler(d.Hub, d.Audit, d.Uploader)
	scheduleHandler := handlers.NewScheduleHandler(d.Hub, d.Audit)
	holidayHandler := handlers.NewHolidayHandler(d.Hub, d.Audit)
	dashboardHandler := handlers.NewDashboardHandler(dashboardUC, d.Clock)
	realtimeHandler := handlers.NewRealtimeHandler(d.Hub)

	// ======================================================
	// 🔧 INFRA
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		if d.Hub.Appointments.Loading() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
			return
		}
		httpresp.OK(c, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/services", publicHandler.ListServices)
			publicAPI.GET("/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/gallery", publicHandler.ListGallery)
			publicAPI.GET("/availability", publicHandler.Availability)
			publicAPI.POST("/appointments", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Auth))
		{
			secured.POST("/auth/logout", authHandler.Logout)
			secured.GET("/me", authHandler.Me)
		}

		// ------------------------------
		// 🔐 API ADMIN
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(d.Auth))
		{
			admin.GET("/appointments", appointmentHandler.List)
			admin.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			admin.DELETE("/appointments/:id", appointmentHandler.Delete)

			admin.GET("/dashboard", dashboardHandler.Summary)
			admin.GET("/calendar", dashboardHandler.Calendar)
			admin.GET("/realtime", realtimeHandler.Stream)

			admin.GET("/barbers", barberHandler.List)
			admin.GET("/services", serviceHandler.List)
			admin.GET("/gallery", galleryHandler.List)
			admin.GET("/schedule", scheduleHandler.Get)
			admin.GET("/holidays", holidayHandler.List)

			// catalog writes are admin-only; staff handle appointments
			owner := admin.Group("/")
			owner.Use(middleware.RequireRole(auth.RoleAdmin))

			owner.POST("/barbers", barberHandler.Create)
			owner.PATCH("/barbers/:id", barberHandler.Update)
			owner.DELETE("/barbers/:id", barberHandler.Delete)
			owner.PATCH("/barbers/:id/active", barberHandler.ToggleActive)
			owner.POST("/barbers/:id/photo", barberHandler.UploadPhoto)
			owner.PUT("/barbers/order", barberHandler.Reorder)

			owner.POST("/services", serviceHandler.Create)
			owner.PATCH("/services/:id", serviceHandler.Update)
			owner.DELETE("/services/:id", serviceHandler.Delete)
			owner.PATCH("/services/:id/active", serviceHandler.ToggleActive)
			owner.PUT("/services/order", serviceHandler.Reorder)

			owner.POST("/gallery", galleryHandler.Create)
			owner.PATCH("/gallery/:id", galleryHandler.Update)
			owner.DELETE("/gallery/:id", galleryHandler.Delete)
			owner.PATCH("/gallery/:id/active", galleryHandler.ToggleActive)
			owner.PUT("/gallery/order", galleryHandler.Reorder)

			owner.PUT("/schedule", scheduleHandler.Put)

			owner.POST("/holidays", holidayHandler.Create)
			owner.PUT("/holidays/:id", holidayHandler.Update)
			owner.DELETE("/holidays/:id", holidayHandler.Delete)

			owner.GET("/audit-logs", handlers.NewAuditLogsHandler(d.AuditLog).List)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		httperr.NotFound(c, "route_not_found", "Rota não encontrada.")
	})
}
