// Package scheduler runs the periodic billing jobs: overdue sweeps and
// payment reminders.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	"github.com/coachdesk/coachdesk/internal/clock"
	obsmetrics "github.com/coachdesk/coachdesk/internal/observability/metrics"
	"github.com/coachdesk/coachdesk/internal/reminder"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler requires db, logger, clock and services")

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Clock        clock.Clock
	AdmissionSvc admissiondomain.Service
	BoardSvc     boardbillingdomain.Service
	ReminderSvc  *reminder.Service
	Config       Config `optional:"true"`
}

type Scheduler struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	admissionSvc admissiondomain.Service
	boardSvc     boardbillingdomain.Service
	reminderSvc  *reminder.Service
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.AdmissionSvc == nil || p.BoardSvc == nil || p.ReminderSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:           p.DB,
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		admissionSvc: p.AdmissionSvc,
		boardSvc:     p.BoardSvc,
		reminderSvc:  p.ReminderSvc,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	err := fn(ctx)
	schedMetrics.ObserveJobDuration(name, time.Since(start).Seconds())
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.log.Warn("job timed out",
			zap.String("job", name),
			zap.Duration("timeout", s.cfg.JobTimeout),
			zap.Error(err),
		)
		return nil
	}

	schedMetrics.IncJobError(name)
	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	err = errors.Join(err, s.runJob(parent, "mark_overdue", s.MarkOverdueJob))
	err = errors.Join(err, s.runJob(parent, "send_reminders", s.SendRemindersJob))
	return err
}

// MarkOverdueJob sweeps both billing tables for rows past their due
// date that are still pending.
func (s *Scheduler) MarkOverdueJob(ctx context.Context) error {
	now := s.clock.Now()

	installments, err := s.admissionSvc.MarkOverdue(ctx, now)
	if err != nil {
		return err
	}
	bills, err := s.boardSvc.MarkOverdue(ctx, now)
	if err != nil {
		return err
	}

	if installments+bills > 0 {
		obsmetrics.Scheduler().AddRowsSwept("mark_overdue", installments+bills)
		s.log.Info("marked overdue",
			zap.Int("installments", installments),
			zap.Int("monthly_bills", bills),
		)
	}
	return nil
}

func (s *Scheduler) SendRemindersJob(ctx context.Context) error {
	sent, err := s.reminderSvc.Run(ctx, s.cfg.BatchSize)
	if sent > 0 {
		obsmetrics.Scheduler().AddRowsSwept("send_reminders", sent)
		s.log.Info("reminders sent", zap.Int("count", sent))
	}
	return err
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
