package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/vet-scheduler/internal/audit"
	"github.com/BruksfildServices01/vet-scheduler/internal/config"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/calendar"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/inventory"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/pricing"
	"github.com/BruksfildServices01/vet-scheduler/internal/domain/uow"
	"github.com/BruksfildServices01/vet-scheduler/internal/handlers"
	"github.com/BruksfildServices01/vet-scheduler/internal/metrics"
	"github.com/BruksfildServices01/vet-scheduler/internal/middleware"
	"github.com/BruksfildServices01/vet-scheduler/internal/notify"
	"github.com/BruksfildServices01/vet-scheduler/internal/payments"
	"github.com/BruksfildServices01/vet-scheduler/internal/receipts"
	ucAppointment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/appointment"
	ucCatalog "github.com/BruksfildServices01/vet-scheduler/internal/usecase/catalog"
	ucInventory "github.com/BruksfildServices01/vet-scheduler/internal/usecase/inventory"
	ucPayment "github.com/BruksfildServices01/vet-scheduler/internal/usecase/payment"
	ucSchedule "github.com/BruksfildServices01/vet-scheduler/internal/usecase/schedule"
)

// Dependencies é o que o processo monta antes de registrar as rotas.
// Notify, Receipts e Payments são opcionais.
type Dependencies struct {
	Config   *config.Config
	Schedule calendar.Schedule

	Runner     uow.Runner
	AuditStore audit.Store
	Audit      *audit.Dispatcher

	Notify   *notify.Dispatcher
	Receipts *receipts.Archiver
	Payments payments.Gateway

	Registry *prometheus.Registry
	Log      zerolog.Logger

	// Now substitui o relógio nos testes.
	Now func() time.Time
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	cfg := deps.Config
	loc := deps.Schedule.Location()

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins()))

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	bookingMetrics := metrics.NewBookingMetrics(registry)

	stockOpts := []inventory.Option{inventory.WithReturnShelfLife(cfg.ReturnShelfLife())}
	if deps.Now != nil {
		stockOpts = append(stockOpts, inventory.WithClock(deps.Now))
	}
	stock := inventory.NewEngine(loc, stockOpts...)

	env := ucAppointment.Env{
		Runner:     deps.Runner,
		Schedule:   deps.Schedule,
		Pricing:    pricing.NewEngine(cfg.CurrencyScale),
		Stock:      stock,
		MinAdvance: cfg.MinAdvance(),
		Now:        deps.Now,
		Audit:      deps.Audit,
		Notify:     deps.Notify,
		Metrics:    bookingMetrics,
		Receipts:   deps.Receipts,
		Payments:   deps.Payments,
		Log:        deps.Log,
	}

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	publicHandler := handlers.NewPublicHandler(
		deps.Schedule,
		ucAppointment.NewGetAvailability(env),
		ucCatalog.NewListOfferableServices(deps.Runner, stock),
	)

	appointmentHandler := handlers.NewAppointmentHandler(env)

	scheduleHandler := handlers.NewScheduleHandler(
		loc,
		ucSchedule.NewBlocks(deps.Runner, deps.Audit),
	)

	inventoryHandler := handlers.NewInventoryHandler(
		loc,
		ucInventory.NewListLowStock(deps.Runner),
		ucInventory.NewReceiveBatch(deps.Runner, stock, deps.Audit),
	)

	catalogHandler := handlers.NewCatalogHandler(
		ucCatalog.NewUpdatePrerequisites(deps.Runner, deps.Audit),
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(audit.New(deps.AuditStore))

	webhookHandler := handlers.NewWebhookHandler(
		ucPayment.NewProcessNotification(deps.Payments, ucAppointment.NewConfirmPayment(env), deps.Log),
		deps.Log,
	)

	// ======================================================
	// 🩺 OPERAÇÃO
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		api.GET("/clinic/hours", publicHandler.ClinicHours)
		api.GET("/slots", publicHandler.Slots)
		api.GET("/services", publicHandler.Services)
		api.POST("/webhooks/mercadopago", webhookHandler.MercadoPago)

		// ------------------------------
		// 🔐 TUTOR (staff também pode)
		// ------------------------------
		secured := api.Group("/")
		secured.Use(
			middleware.AuthMiddleware(cfg.JWTSecret),
			middleware.RequireRole(domain.RoleTutor, domain.RoleStaff),
		)
		{
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.ListMine)
			secured.POST("/me/appointments/:id/cancel", appointmentHandler.CancelMine)
		}

		// ------------------------------
		// 🏥 EQUIPE DA CLÍNICA
		// ------------------------------
		staff := api.Group("/staff")
		staff.Use(
			middleware.AuthMiddleware(cfg.JWTSecret),
			middleware.RequireRole(domain.RoleStaff),
		)
		{
			staff.GET("/appointments", appointmentHandler.ListByDate)
			staff.PATCH("/appointments/:id/status", appointmentHandler.UpdateStatus)
			staff.POST("/appointments/:id/items/:itemId/fulfil", appointmentHandler.FulfilItem)
			staff.POST("/appointments/:id/items/:itemId/cancel", appointmentHandler.CancelItem)

			staff.GET("/blocks", scheduleHandler.ListBlocks)
			staff.POST("/blocks", scheduleHandler.CreateBlock)
			staff.DELETE("/blocks/:id", scheduleHandler.DeleteBlock)

			staff.GET("/supplies/low-stock", inventoryHandler.LowStock)
			staff.POST("/supplies/:id/batches", inventoryHandler.ReceiveBatch)

			staff.PUT("/services/:id/prerequisites", catalogHandler.UpdatePrerequisites)

			staff.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
