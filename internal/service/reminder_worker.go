package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/config"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/domain"
	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

const reminderClaimBatch = 50

// ReminderWorker emails customers and inspectors ahead of upcoming visits.
// Appointments are claimed with their reminder stamped in the same statement,
// so overlapping instances never send twice.
type ReminderWorker struct {
	apptRepo     port.AppointmentRepository
	customerRepo port.CustomerRepository
	buildingRepo port.BuildingRepository
	userRepo     port.UserRepository
	branchRepo   port.BranchRepository
	emailSender  port.EmailSender
	cfg          config.RemindersConfig
	logger       *zap.Logger
}

// NewReminderWorker creates a new ReminderWorker.
func NewReminderWorker(
	apptRepo port.AppointmentRepository,
	customerRepo port.CustomerRepository,
	buildingRepo port.BuildingRepository,
	userRepo port.UserRepository,
	branchRepo port.BranchRepository,
	emailSender port.EmailSender,
	cfg config.RemindersConfig,
	logger *zap.Logger,
) *ReminderWorker {
	return &ReminderWorker{
		apptRepo:     apptRepo,
		customerRepo: customerRepo,
		buildingRepo: buildingRepo,
		userRepo:     userRepo,
		branchRepo:   branchRepo,
		emailSender:  emailSender,
		cfg:          cfg,
		logger:       logger,
	}
}

// Start runs the polling loop until ctx is canceled.
func (w *ReminderWorker) Start(ctx context.Context) {
	interval := w.cfg.PollInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("reminder worker started",
		zap.Duration("poll", interval), zap.Duration("lead_time", w.cfg.LeadTime))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("reminder worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderWorker) sweep(ctx context.Context) {
	windowEnd := time.Now().UTC().Add(w.cfg.LeadTime)
	due, err := w.apptRepo.ClaimDueReminders(ctx, windowEnd, reminderClaimBatch)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("claiming due reminders failed", zap.Error(err))
		}
		return
	}

	for i := range due {
		w.send(ctx, &due[i])
	}
}

func (w *ReminderWorker) send(ctx context.Context, appt *domain.Appointment) {
	branch, err := w.branchRepo.GetByID(ctx, appt.BranchID)
	if err != nil {
		w.logger.Warn("loading branch for reminder failed",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		return
	}

	loc, err := time.LoadLocation(appt.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	startsAtLocal := appt.StartsAt.In(loc).Format("Monday 02 Jan 2006, 15:04")
	address := w.visitAddress(ctx, appt)

	customer, err := w.customerRepo.GetByID(ctx, appt.CustomerID)
	if err != nil {
		w.logger.Warn("loading customer for reminder failed",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
	} else if customer.Email != "" {
		if err := w.emailSender.SendAppointmentReminder(ctx, customer.Email, customer.ContactName, branch.Name, startsAtLocal, address); err != nil {
			w.logger.Warn("customer reminder email failed",
				zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		}
	}

	inspector, err := w.userRepo.GetByID(ctx, appt.InspectorID)
	if err != nil {
		w.logger.Warn("loading inspector for reminder failed",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
		return
	}
	if err := w.emailSender.SendAppointmentReminder(ctx, inspector.Email, inspector.FullName, branch.Name, startsAtLocal, address); err != nil {
		w.logger.Warn("inspector reminder email failed",
			zap.String("appointment_id", appt.ID.String()), zap.Error(err))
	}
}

func (w *ReminderWorker) visitAddress(ctx context.Context, appt *domain.Appointment) string {
	if appt.BuildingID != nil {
		building, err := w.buildingRepo.GetByID(ctx, *appt.BuildingID)
		if err == nil {
			return fmt.Sprintf("%s, %s %s", building.AddressLine, building.PostalCode, building.City)
		}
		w.logger.Warn("loading building for reminder failed", zap.Error(err))
	}
	customer, err := w.customerRepo.GetByID(ctx, appt.CustomerID)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s, %s %s", customer.AddressLine, customer.PostalCode, customer.City)
}
