package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/barber-loyalty/internal/audit"
	"github.com/BruksfildServices01/barber-loyalty/internal/auth"
	"github.com/BruksfildServices01/barber-loyalty/internal/cache"
	"github.com/BruksfildServices01/barber-loyalty/internal/config"
	apdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/appointment"
	catalogdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/catalog"
	"github.com/BruksfildServices01/barber-loyalty/internal/domain/loyalty"
	userdomain "github.com/BruksfildServices01/barber-loyalty/internal/domain/user"
	"github.com/BruksfildServices01/barber-loyalty/internal/events"
	"github.com/BruksfildServices01/barber-loyalty/internal/handlers"
	"github.com/BruksfildServices01/barber-loyalty/internal/middleware"
	"github.com/BruksfildServices01/barber-loyalty/internal/push"
	"github.com/BruksfildServices01/barber-loyalty/internal/storage"
	"github.com/BruksfildServices01/barber-loyalty/internal/tasks"
	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/barber-loyalty/internal/usecase/appointment"
	"github.com/BruksfildServices01/barber-loyalty/internal/usecase/catalog"
	"github.com/BruksfildServices01/barber-loyalty/internal/usecase/identity"
)

// Deps is everything the router needs. DB is optional: without it the
// admin chat and audit log routes are not mounted.
type Deps struct {
	Config *config.Config
	Log    *zap.Logger
	DB     *gorm.DB

	Users        userdomain.Repository
	Appointments apdomain.Repository
	Catalog      catalogdomain.Repository

	Cache     cache.Cache
	Uploader  storage.Uploader
	Feed      events.Feed
	Reminders tasks.Scheduler
	Audit     *audit.Dispatcher

	// Push is nil when no VAPID keys are configured; the notification
	// routes are then not mounted.
	Push *push.Service

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func NewRouter(d Deps) *gin.Engine {
	cfg := d.Config
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()

	// ======================================================
	// GLOBAL MIDDLEWARE
	// ======================================================
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger(log))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	loc := timezone.Location(cfg.Timezone)
	policy := loyalty.NewPolicy(cfg.LoyaltyThreshold)
	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	settings := ucAppointment.Settings{
		Location: loc,
		Slot:     cfg.SlotDuration(),
		Policy:   policy,
		Now:      d.Now,
	}

	fx := &ucAppointment.Effects{
		Audit:     d.Audit,
		Events:    d.Feed,
		Reminders: d.Reminders,
		Log:       log,
	}
	if d.Push != nil {
		fx.Push = d.Push
	}

	// ======================================================
	// USE CASES
	// ======================================================
	identitySvc := identity.NewService(d.Users, tokens, identity.Options{
		AllowAdminSignup:  cfg.AllowAdminSignup,
		VerifyEmailDomain: cfg.VerifyEmailDomain,
		Policy:            policy,
	}, d.Audit, log)

	catalogSvc := catalog.New(d.Catalog, catalog.Deps{
		Cache:    d.Cache,
		TTL:      cfg.CatalogCacheTTL,
		Uploader: d.Uploader,
		Audit:    d.Audit,
		Log:      log,
	})

	repo := d.Appointments
	appointmentUC := handlers.AppointmentUseCases{
		Book:         ucAppointment.NewBookAppointment(repo, settings, fx),
		Cancel:       ucAppointment.NewCancelAppointment(repo, settings, fx),
		UpdateStatus: ucAppointment.NewUpdateStatus(repo, settings, fx),
		Modify:       ucAppointment.NewModifyAppointment(repo, settings, fx),
		Delete:       ucAppointment.NewDeleteAppointment(repo, settings, fx),
		Availability: ucAppointment.NewGetAvailability(repo, settings),
		List:         ucAppointment.NewListAppointments(repo, settings),
		Revenue:      ucAppointment.NewRevenueReport(repo, settings),
		Lock:         ucAppointment.NewLockSlot(repo, settings, fx),
		Unlock:       ucAppointment.NewUnlockSlot(repo, settings, fx),
		Blocked:      ucAppointment.NewBlockedSlots(repo, settings, fx),
	}

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(identitySvc)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentUC, loc)

	requireAuth := middleware.AuthMiddleware(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	adminOnly := middleware.AdminOnly()

	// ======================================================
	// OPS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ======================================================
	// AUTH
	// ======================================================
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", limiter.Middleware(), authHandler.SignUp)
		authGroup.POST("/signin", limiter.Middleware(), authHandler.SignIn)
		authGroup.GET("/me", requireAuth, authHandler.Me)
	}

	// ======================================================
	// CATALOG
	// ======================================================
	services := api.Group("/services")
	{
		services.GET("", catalogHandler.ListServices)
		services.GET("/:id", catalogHandler.GetService)
		services.POST("", requireAuth, adminOnly, catalogHandler.CreateService)
		services.PUT("/:id", requireAuth, adminOnly, catalogHandler.UpdateService)
		services.DELETE("/:id", requireAuth, adminOnly, catalogHandler.DeleteService)
	}

	barbers := api.Group("/barbers")
	{
		barbers.GET("", catalogHandler.ListBarbers)
		barbers.GET("/:id", catalogHandler.GetBarber)
		barbers.GET("/:id/working-hours", catalogHandler.GetWorkingHours)
		barbers.POST("", requireAuth, adminOnly, catalogHandler.CreateBarber)
		barbers.PUT("/:id", requireAuth, adminOnly, catalogHandler.UpdateBarber)
		barbers.DELETE("/:id", requireAuth, adminOnly, catalogHandler.DeleteBarber)
		barbers.POST("/:id/photo", requireAuth, adminOnly, catalogHandler.UploadPhoto)
		barbers.PUT("/:id/working-hours", requireAuth, adminOnly, catalogHandler.UpdateWorkingHours)
	}

	products := api.Group("/products")
	{
		products.GET("", optionalAuth, catalogHandler.ListProducts)
		products.POST("", requireAuth, adminOnly, catalogHandler.CreateProduct)
		products.PATCH("/:id", requireAuth, adminOnly, catalogHandler.UpdateProduct)
	}

	// ======================================================
	// APPOINTMENTS
	// ======================================================
	appointments := api.Group("/appointments")
	{
		// public, guests included
		appointments.POST("/book", limiter.Middleware(), optionalAuth, appointmentHandler.Book)
		appointments.PUT("/:id/cancel", optionalAuth, appointmentHandler.Cancel)
		appointments.GET("/available", appointmentHandler.Available)
		appointments.GET("/by-contact", limiter.Middleware(), appointmentHandler.ByContact)

		// signed in
		appointments.GET("/my-appointments", requireAuth, appointmentHandler.Mine)
		appointments.PUT("/:id/modify", requireAuth, appointmentHandler.Modify)

		// admin
		admin := appointments.Group("", requireAuth, adminOnly)
		admin.GET("", appointmentHandler.List)
		admin.GET("/filter", appointmentHandler.Filter)
		admin.GET("/new-count", appointmentHandler.NewCount)
		admin.GET("/revenue-report/:barberId", appointmentHandler.RevenueReport)
		admin.GET("/:id", appointmentHandler.Get)
		admin.PUT("/:id/status", appointmentHandler.UpdateStatus)
		admin.PUT("/:id/view", appointmentHandler.MarkViewed)
		admin.DELETE("/:id", appointmentHandler.Delete)

		admin.POST("/lock", appointmentHandler.Lock)
		admin.DELETE("/lock", appointmentHandler.Unlock)
		admin.GET("/blocked", appointmentHandler.ListBlocked)
		admin.POST("/blocked", appointmentHandler.CreateBlocked)
		admin.DELETE("/blocked/:id", appointmentHandler.DeleteBlocked)

		if d.Feed != nil {
			admin.GET("/stream", handlers.NewStreamHandler(d.Feed).Stream)
		}
	}

	// ======================================================
	// WEB PUSH
	// ======================================================
	if d.Push != nil {
		pushHandler := handlers.NewPushHandler(d.Push)

		notifications := api.Group("/notifications")
		notifications.GET("/vapid-public-key", pushHandler.PublicKey)
		notifications.POST("/subscribe", requireAuth, pushHandler.Subscribe)
		notifications.POST("/unsubscribe", requireAuth, pushHandler.Unsubscribe)
	}

	// ======================================================
	// ADMIN BACKOFFICE
	// ======================================================
	if d.DB != nil {
		chatHandler := handlers.NewAdminChatHandler(d.DB)
		auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, loc)

		backoffice := api.Group("/admin", requireAuth, adminOnly)
		backoffice.GET("/chat", chatHandler.List)
		backoffice.POST("/chat", chatHandler.Post)
		backoffice.GET("/audit-logs", auditLogsHandler.List)
	}

	return r
}
