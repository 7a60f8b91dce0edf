package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/handler"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/middleware"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
)

// Deps bundles everything Setup needs to wire the HTTP surface.
type Deps struct {
	Cfg     *config.Config
	Logger  *zap.Logger
	AuthSvc service.AuthService

	Auth         *handler.AuthHandler
	Branches     *handler.BranchHandler
	Users        *handler.UserHandler
	Customers    *handler.CustomerHandler
	Buildings    *handler.BuildingHandler
	Reports      *handler.ReportHandler
	Offers       *handler.OfferHandler
	Appointments *handler.AppointmentHandler
	Agreements   *handler.AgreementHandler
	Portal       *handler.PortalHandler
	PDF          *handler.PDFHandler
	Exports      *handler.ExportHandler
	Audit        *handler.AuditHandler
	Health       *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(d Deps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS(d.Cfg.CORS))

	// Health checks
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.RefreshToken)
	auth.POST("/social-login", d.Auth.SocialLogin)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.POST("/reset-password", d.Auth.ResetPassword)
	// Activation invites consume the same single-use token as resets.
	auth.POST("/activate", d.Auth.ResetPassword)

	// Public customer portal - token-addressed, no session
	portal := v1.Group("/portal")
	portal.Use(middleware.MaxBodyBytes(1 << 20))
	portal.GET("/offers/:token", d.Portal.GetOffer)
	portal.POST("/offers/:token/accept", d.Portal.AcceptOffer)
	portal.POST("/offers/:token/decline", d.Portal.DeclineOffer)
	portal.GET("/reports/:token", d.Portal.GetReport)
	portal.GET("/reports/:token/pdf", d.Portal.GetReportPDF)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(d.AuthSvc))

	protected.POST("/auth/logout", d.Auth.Logout)

	// Own profile
	protected.GET("/me", d.Users.Me)
	protected.PUT("/me", d.Users.UpdateMe)
	protected.POST("/me/password", d.Users.ChangePassword)

	// Branch management - mutations are superadmin-only
	branches := protected.Group("/branches")
	branches.POST("", middleware.RequireLevel(domain.LevelSuperadmin), d.Branches.Create)
	branches.GET("", d.Branches.List)
	branches.GET("/:id", d.Branches.GetByID)
	branches.PUT("/:id", middleware.RequireLevel(domain.LevelSuperadmin), d.Branches.Update)
	branches.PATCH("/:id/active", middleware.RequireLevel(domain.LevelSuperadmin), d.Branches.SetActive)

	// User management (branch-scoped)
	users := protected.Group("/users")
	users.POST("", middleware.RequireLevel(domain.LevelBranchAdmin), d.Users.Create)
	users.GET("", middleware.RequireLevel(domain.LevelBranchAdmin), d.Users.List)
	users.GET("/:id", d.Users.GetByID)
	users.PUT("/:id", middleware.RequireLevel(domain.LevelBranchAdmin), d.Users.Update)
	users.PATCH("/:id/active", middleware.RequireLevel(domain.LevelBranchAdmin), d.Users.SetActive)

	// Customers and their buildings
	customers := protected.Group("/customers")
	customers.POST("", d.Customers.Create)
	customers.GET("", d.Customers.List)
	customers.GET("/:id", d.Customers.GetByID)
	customers.PUT("/:id", d.Customers.Update)
	customers.DELETE("/:id", middleware.RequireLevel(domain.LevelBranchAdmin), d.Customers.Delete)
	customers.GET("/:id/buildings", d.Buildings.ListByCustomer)

	buildings := protected.Group("/buildings")
	buildings.POST("", d.Buildings.Create)
	buildings.GET("/:id", d.Buildings.GetByID)
	buildings.PUT("/:id", d.Buildings.Update)
	buildings.DELETE("/:id", middleware.RequireLevel(domain.LevelBranchAdmin), d.Buildings.Delete)

	// Inspection reports, findings and photos
	reports := protected.Group("/reports")
	reports.POST("", d.Reports.Create)
	reports.GET("", d.Reports.List)
	reports.GET("/:id", d.Reports.GetByID)
	reports.PUT("/:id", d.Reports.Update)
	reports.POST("/:id/findings", d.Reports.AddFinding)
	reports.PUT("/:id/findings/:findingId", d.Reports.UpdateFinding)
	reports.DELETE("/:id/findings/:findingId", d.Reports.DeleteFinding)
	reports.POST("/:id/photos", middleware.MaxBodyBytes((d.Cfg.S3.MaxPhotoSizeMB+1)<<20), d.Reports.UploadPhoto)
	reports.DELETE("/:id/photos/:photoId", d.Reports.DeletePhoto)
	reports.GET("/:id/photos/:photoId/url", d.Reports.GetPhotoURL)
	reports.POST("/:id/complete", d.Reports.Complete)
	reports.POST("/:id/send", d.Reports.Send)
	reports.POST("/:id/archive", middleware.RequireLevel(domain.LevelBranchAdmin), d.Reports.Archive)
	reports.POST("/:id/pdf", d.PDF.EnqueueReport)

	// Offers
	offers := protected.Group("/offers")
	offers.POST("", d.Offers.Create)
	offers.GET("", d.Offers.List)
	offers.GET("/:id", d.Offers.GetByID)
	offers.PUT("/:id", d.Offers.Update)
	offers.POST("/:id/send", d.Offers.Send)
	offers.POST("/:id/accept", d.Offers.Accept)
	offers.POST("/:id/decline", d.Offers.Decline)
	offers.POST("/:id/archive", middleware.RequireLevel(domain.LevelBranchAdmin), d.Offers.Archive)
	offers.POST("/:id/pdf", d.PDF.EnqueueOffer)

	// Appointments
	appointments := protected.Group("/appointments")
	appointments.POST("", d.Appointments.Create)
	appointments.GET("", d.Appointments.List)
	appointments.GET("/availability", d.Appointments.Availability)
	appointments.GET("/:id", d.Appointments.GetByID)
	appointments.PUT("/:id", d.Appointments.Reschedule)
	appointments.POST("/:id/cancel", d.Appointments.Cancel)
	appointments.POST("/:id/complete", d.Appointments.Complete)
	appointments.POST("/:id/no-show", d.Appointments.MarkNoShow)

	// Service agreements
	agreements := protected.Group("/agreements")
	agreements.POST("", d.Agreements.Create)
	agreements.GET("", d.Agreements.List)
	agreements.GET("/due", d.Agreements.ListDue)
	agreements.GET("/:id", d.Agreements.GetByID)
	agreements.PUT("/:id", d.Agreements.Update)
	agreements.POST("/:id/pause", d.Agreements.Pause)
	agreements.POST("/:id/resume", d.Agreements.Resume)
	agreements.POST("/:id/terminate", d.Agreements.Terminate)
	agreements.POST("/:id/generate-visit", d.Agreements.GenerateVisit)

	// PDF render jobs
	pdfJobs := protected.Group("/pdf-jobs")
	pdfJobs.GET("/:id", d.PDF.GetJob)
	pdfJobs.GET("/:id/download", d.PDF.Download)

	// Register exports and audit trail - branch admin and up
	exports := protected.Group("/exports")
	exports.Use(middleware.RequireLevel(domain.LevelBranchAdmin))
	exports.GET("/reports.xlsx", d.Exports.ReportsRegister)
	exports.GET("/offers.xlsx", d.Exports.OffersRegister)

	protected.GET("/audit", middleware.RequireLevel(domain.LevelBranchAdmin), d.Audit.List)

	return r
}
