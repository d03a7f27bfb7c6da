package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	admissionservice "github.com/coachdesk/coachdesk/internal/admission/service"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	boardbillingservice "github.com/coachdesk/coachdesk/internal/boardbilling/service"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	catalogservice "github.com/coachdesk/coachdesk/internal/catalog/service"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/providers/email"
	"github.com/coachdesk/coachdesk/internal/reminder"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newScheduler(t *testing.T) (*Scheduler, *gorm.DB, *snowflake.Node, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Course{},
		&catalogdomain.FeeLineItem{},
		&catalogdomain.Subject{},
		&studentdomain.Student{},
		&admissiondomain.Admission{},
		&admissiondomain.Installment{},
		&boardbillingdomain.MonthlyBill{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 7, 1, 6, 0, 0, 0, time.UTC))
	cfg := config.Config{Billing: config.BillingConfig{GSTRatePercent: "9", ReminderDaysOut: 3}}

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	admissionSvc := admissionservice.NewService(admissionservice.ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		Config:     cfg,
		CatalogSvc: catalogSvc,
	})
	boardSvc := boardbillingservice.NewService(boardbillingservice.ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Config:     cfg,
		CatalogSvc: catalogSvc,
	})
	reminderSvc := reminder.NewService(reminder.Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  fakeClock,
		Config: cfg,
		Email:  &email.NoOpProvider{},
	})

	sched, err := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		Clock:        fakeClock,
		AdmissionSvc: admissionSvc,
		BoardSvc:     boardSvc,
		ReminderSvc:  reminderSvc,
	})
	require.NoError(t, err)
	return sched, db, node, fakeClock
}

func TestMarkOverdueJobSweepsBothTables(t *testing.T) {
	sched, db, node, fakeClock := newScheduler(t)

	admissionID := node.Generate()
	require.NoError(t, db.Create(&admissiondomain.Installment{
		ID:          node.Generate(),
		AdmissionID: admissionID,
		Number:      1,
		DueDate:     fakeClock.Now().Add(-24 * time.Hour),
		Amount:      decimal.NewFromInt(1000),
		Status:      admissiondomain.InstallmentStatusPending,
	}).Error)
	require.NoError(t, db.Create(&admissiondomain.Installment{
		ID:          node.Generate(),
		AdmissionID: admissionID,
		Number:      2,
		DueDate:     fakeClock.Now().Add(24 * time.Hour),
		Amount:      decimal.NewFromInt(1000),
		Status:      admissiondomain.InstallmentStatusPending,
	}).Error)
	require.NoError(t, db.Create(&boardbillingdomain.MonthlyBill{
		ID:          node.Generate(),
		AdmissionID: node.Generate(),
		MonthNo:     1,
		DueDate:     fakeClock.Now().Add(-48 * time.Hour),
		Amount:      decimal.NewFromInt(590),
		Status:      admissiondomain.InstallmentStatusPending,
	}).Error)

	require.NoError(t, sched.MarkOverdueJob(context.Background()))

	var statuses []string
	require.NoError(t, db.Model(&admissiondomain.Installment{}).
		Order("number").Pluck("status", &statuses).Error)
	require.Equal(t, []string{"OVERDUE", "PENDING"}, statuses)

	var bill boardbillingdomain.MonthlyBill
	require.NoError(t, db.First(&bill).Error)
	require.Equal(t, admissiondomain.InstallmentStatusOverdue, bill.Status)

	// Idempotent: a second sweep changes nothing.
	require.NoError(t, sched.MarkOverdueJob(context.Background()))
}

func TestMarkOverdueJobRespectsFakeClock(t *testing.T) {
	sched, db, node, fakeClock := newScheduler(t)

	require.NoError(t, db.Create(&admissiondomain.Installment{
		ID:          node.Generate(),
		AdmissionID: node.Generate(),
		Number:      1,
		DueDate:     fakeClock.Now().Add(12 * time.Hour),
		Amount:      decimal.NewFromInt(1000),
		Status:      admissiondomain.InstallmentStatusPending,
	}).Error)

	require.NoError(t, sched.MarkOverdueJob(context.Background()))
	var row admissiondomain.Installment
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, admissiondomain.InstallmentStatusPending, row.Status)

	// The row becomes overdue only after the clock passes its due date.
	fakeClock.Advance(13 * time.Hour)
	require.NoError(t, sched.MarkOverdueJob(context.Background()))
	require.NoError(t, db.First(&row).Error)
	require.Equal(t, admissiondomain.InstallmentStatusOverdue, row.Status)
}

func TestRunOnceAggregatesJobs(t *testing.T) {
	sched, _, _, _ := newScheduler(t)
	require.NoError(t, sched.RunOnce(context.Background()))
}
