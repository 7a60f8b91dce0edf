package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/audit"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/auth"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/auth/google"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/email/noop"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/email/ses"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/handler"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/logger"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/pdf"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/repository/postgres"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/router"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/service"
	s3storage "github.com/JesperSolutions/agritectum-platform-sub017/internal/storage/s3"

	_ "github.com/JesperSolutions/agritectum-platform-sub017/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Taklaget Platform API
// @version 1.0
// @description Multi-branch backend for roof inspections, offers, appointments and service agreements.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token authentication. Format: "Bearer {token}"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zlog := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = zlog.Sync() }()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Token blacklist: Redis when configured, in-memory otherwise. The
	// in-memory variant forgets revocations on restart, which is acceptable
	// for development only.
	var blacklist port.TokenBlacklist
	if cfg.Redis.Enabled {
		rb, err := auth.NewRedisBlacklist(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.JWT.RefreshTokenExpiry)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = rb.Close() }()
		blacklist = rb
	} else {
		blacklist = auth.NewMemoryBlacklist()
		zlog.Warn("redis disabled, using in-memory token blacklist")
	}

	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.FrontendURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(cfg.Email.FrontendURL, zlog)
		zlog.Warn("email provider is noop, outgoing mail will only be logged")
	}

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize repositories
	branchRepo := postgres.NewBranchRepo(db)
	userRepo := postgres.NewUserRepo(db)
	customerRepo := postgres.NewCustomerRepo(db)
	buildingRepo := postgres.NewBuildingRepo(db)
	reportRepo := postgres.NewReportRepo(db)
	offerRepo := postgres.NewOfferRepo(db)
	apptRepo := postgres.NewAppointmentRepo(db)
	agreementRepo := postgres.NewAgreementRepo(db)
	pdfJobRepo := postgres.NewPDFJobRepo(db)
	auditRepo := postgres.NewAuditRepo(db)

	auditor := audit.NewDispatcher(auditRepo, zlog)
	defer auditor.Close()

	renderer := pdf.NewChromeRenderer(cfg.PDF.ChromeURL, time.Duration(cfg.PDF.RenderTimeoutSec)*time.Second, zlog)
	defer func() { _ = renderer.Close() }()

	templates, err := pdf.NewTemplateEngine()
	if err != nil {
		return fmt.Errorf("failed to parse PDF templates: %w", err)
	}

	// Initialize services
	authSvc := service.NewAuthService(userRepo, branchRepo, blacklist, auditor, cfg.JWT, zlog)
	userSvc := service.NewUserService(userRepo, emailSender, blacklist, authSvc, auditor, cfg.JWT, zlog)
	passwordResetSvc := service.NewPasswordResetService(userRepo, emailSender, blacklist, cfg.JWT, zlog)
	branchSvc := service.NewBranchService(branchRepo, auditor)
	customerSvc := service.NewCustomerService(customerRepo, auditor)
	buildingSvc := service.NewBuildingService(buildingRepo, customerRepo, auditor)
	reportSvc := service.NewReportService(reportRepo, customerRepo, buildingRepo, branchRepo, storage, emailSender, auditor, cfg.S3, cfg.Portal, zlog)
	offerSvc := service.NewOfferService(offerRepo, customerRepo, reportRepo, branchRepo, emailSender, auditor, cfg.Portal, zlog)
	apptSvc := service.NewAppointmentService(apptRepo, customerRepo, buildingRepo, userRepo, reportRepo, auditor, cfg.Booking)
	agreementSvc := service.NewAgreementService(agreementRepo, apptRepo, customerRepo, buildingRepo, auditor, zlog)
	portalSvc := service.NewPortalService(offerRepo, reportRepo, customerRepo, buildingRepo, branchRepo, pdfJobRepo, storage, emailSender, auditor, cfg.S3, zlog)
	pdfSvc := service.NewPDFService(pdfJobRepo, reportRepo, offerRepo, storage, cfg.S3)
	exportSvc := service.NewExportService(reportRepo, offerRepo, customerRepo, buildingRepo, userRepo, branchRepo, auditor, zlog)
	auditSvc := service.NewAuditService(auditRepo)

	var socialSvc service.SocialAuthService
	if cfg.Auth.GoogleClientID != "" {
		verifiers := map[string]port.SocialTokenVerifier{
			string(domain.AuthProviderGoogle): google.NewVerifier(cfg.Auth.GoogleClientID),
		}
		socialSvc = service.NewSocialAuthService(verifiers, userRepo, branchRepo, authSvc)
	}

	// Background workers
	renderWorker := service.NewPDFRenderWorker(pdfJobRepo, reportRepo, offerRepo, customerRepo, buildingRepo, branchRepo, userRepo, renderer, templates, storage, cfg.PDF, cfg.S3, zlog)
	reminderWorker := service.NewReminderWorker(apptRepo, customerRepo, buildingRepo, userRepo, branchRepo, emailSender, cfg.Reminders, zlog)
	visitWorker := service.NewAgreementVisitWorker(agreementSvc, cfg.Agreements, zlog)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	go renderWorker.Start(workerCtx)
	go reminderWorker.Start(workerCtx)
	go visitWorker.Start(workerCtx)

	// Initialize handlers
	r := router.Setup(router.Deps{
		Cfg:     cfg,
		Logger:  zlog,
		AuthSvc: authSvc,

		Auth:         handler.NewAuthHandler(authSvc, passwordResetSvc, socialSvc, zlog),
		Branches:     handler.NewBranchHandler(branchSvc),
		Users:        handler.NewUserHandler(userSvc),
		Customers:    handler.NewCustomerHandler(customerSvc),
		Buildings:    handler.NewBuildingHandler(buildingSvc),
		Reports:      handler.NewReportHandler(reportSvc),
		Offers:       handler.NewOfferHandler(offerSvc),
		Appointments: handler.NewAppointmentHandler(apptSvc),
		Agreements:   handler.NewAgreementHandler(agreementSvc),
		Portal:       handler.NewPortalHandler(portalSvc),
		PDF:          handler.NewPDFHandler(pdfSvc),
		Exports:      handler.NewExportHandler(exportSvc, zlog),
		Audit:        handler.NewAuditHandler(auditSvc),
		Health:       handler.NewHealthHandler(db),
	})

	// Swagger documentation endpoint, not exposed in production
	if cfg.Server.Environment != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	zlog.Info("server exited")
	return nil
}
