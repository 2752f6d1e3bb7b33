package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/jobh/imoveis/internal/config"
	"github.com/jobh/imoveis/internal/domain/finance"
	"github.com/jobh/imoveis/internal/domain/models"
	"github.com/jobh/imoveis/internal/service/rentals"
	"github.com/jobh/imoveis/internal/service/reporting"
)

// Backuper pushes the state to Google Drive.
type Backuper interface {
	PushToDrive(ctx context.Context) (string, error)
}

// Dashboards provides the period totals of the weekly report.
type Dashboards interface {
	Dashboard(ctx context.Context, p models.Period) (reporting.Dashboard, error)
}

// StatusSource classifies the open rentals of a period.
type StatusSource interface {
	Status(ctx context.Context, p models.Period, today time.Time) (rentals.PeriodStatus, error)
}

// Sender delivers the weekly report.
type Sender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	backup     Backuper
	dashboards Dashboards
	status     StatusSource
	sender     Sender
	cfg        config.Config
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// NewScheduler creates a new scheduler running in the configured timezone. backup and
// sender may be nil, which disables the matching job.
func NewScheduler(cfg config.Config, backup Backuper, dashboards Dashboards, status StatusSource, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := cfg.Schedule.Location()
	if err != nil {
		return nil, fmt.Errorf("load timezone: %w", err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		backup:     backup,
		dashboards: dashboards,
		status:     status,
		sender:     sender,
		cfg:        cfg,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("timezone", s.loc.String()))

	if s.backup != nil {
		if _, err := s.cron.AddFunc(s.cfg.Schedule.BackupCron, s.runBackup); err != nil {
			return fmt.Errorf("schedule drive backup %q: %w", s.cfg.Schedule.BackupCron, err)
		}
	} else {
		s.logger.Warn("drive backup disabled")
	}

	if s.sender != nil && s.cfg.WhatsApp.ManagerID != "" {
		if _, err := s.cron.AddFunc(s.cfg.Schedule.ReportCron, s.sendWeeklyReport); err != nil {
			return fmt.Errorf("schedule weekly report %q: %w", s.cfg.Schedule.ReportCron, err)
		}
	} else {
		s.logger.Warn("weekly report disabled, whatsapp or manager id missing")
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runBackup() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	id, err := s.backup.PushToDrive(ctx)
	if err != nil {
		s.logger.Error("scheduled drive backup failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled drive backup done", zap.String("file_id", id))
}

func (s *Scheduler) sendWeeklyReport() {
	s.logger.Info("generating weekly report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := s.WeeklyReport(ctx)
	if err != nil {
		s.logger.Error("failed to generate weekly report", zap.Error(err))
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.cfg.WhatsApp.ManagerID,
		Message: report,
	}

	if err := s.sender.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send weekly report", zap.Error(err))
	} else {
		s.logger.Info("weekly report sent successfully")
	}
}

// WeeklyReport builds the status message of the current period.
func (s *Scheduler) WeeklyReport(ctx context.Context) (string, error) {
	today := s.now().In(s.loc)
	p := models.PeriodOf(today)

	dash, err := s.dashboards.Dashboard(ctx, p)
	if err != nil {
		return "", err
	}
	status, err := s.status.Status(ctx, p, today)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Relatório semanal - %s*\n", p)
	fmt.Fprintf(&b, "Recebido: %s (%d de %d)\n", finance.FormatBRL(dash.TotalPaid), dash.Paid, dash.Rentals)
	fmt.Fprintf(&b, "Taxas de administração: %s\n", finance.FormatBRL(dash.TotalAdminFee))
	fmt.Fprintf(&b, "Repassado: %s (%d)\n", finance.FormatBRL(dash.TotalTransferred), dash.Transferred)
	fmt.Fprintf(&b, "A repassar: %d | Em atraso: %d | A vencer: %d",
		len(status.PaidNotTransferred), len(status.Overdue), len(status.Pending))
	for _, r := range status.Overdue {
		fmt.Fprintf(&b, "\nAtrasado: LF %s - %s", r.RefNumber, r.TenantName)
	}
	return b.String(), nil
}
