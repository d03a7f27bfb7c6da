package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	catalogservice "github.com/coachdesk/coachdesk/internal/catalog/service"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc       boardbillingdomain.Service
	db        *gorm.DB
	ctx       context.Context
	admission *admissiondomain.Admission
}

func newFixture(t *testing.T, defaults []string, months int) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Course{},
		&catalogdomain.FeeLineItem{},
		&catalogdomain.Subject{},
		&admissiondomain.Admission{},
		&admissiondomain.Installment{},
		&boardbillingdomain.MonthlyBill{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := branchctx.WithBranchID(context.Background(), node.Generate())

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	course, err := catalogSvc.CreateCourse(ctx, catalogdomain.CreateCourseRequest{
		Name:           "Class 12 Board",
		Type:           catalogdomain.CourseTypeBoard,
		DurationMonths: months,
		Subjects: []catalogdomain.SubjectInput{
			{Name: "MATH", MonthlyPrice: decimal.NewFromInt(600)},
			{Name: "PHYSICS", MonthlyPrice: decimal.NewFromInt(400)},
			{Name: "CHEMISTRY", MonthlyPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)

	admittedAt := time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC)
	admission := &admissiondomain.Admission{
		ID:              node.Generate(),
		BranchID:        node.Generate(),
		StudentID:       node.Generate(),
		CourseID:        course.ID,
		Type:            admissiondomain.AdmissionTypeBoard,
		DurationMonths:  months,
		DefaultSubjects: defaults,
		AdmittedAt:      admittedAt,
	}
	require.NoError(t, db.Create(admission).Error)

	for no := 1; no <= months; no++ {
		require.NoError(t, db.Create(&boardbillingdomain.MonthlyBill{
			ID:          node.Generate(),
			AdmissionID: admission.ID,
			MonthNo:     no,
			DueDate:     admittedAt.AddDate(0, no, 0),
			Amount:      decimal.Zero,
			Status:      admissiondomain.InstallmentStatusPending,
		}).Error)
	}

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Config:     config.Config{Billing: config.BillingConfig{GSTRatePercent: "9"}},
		CatalogSvc: catalogSvc,
	})

	return &fixture{svc: svc, db: db, ctx: ctx, admission: admission}
}

func TestOpenMonthInheritsAdmissionDefault(t *testing.T) {
	f := newFixture(t, []string{"MATH", "PHYSICS"}, 6)

	// No month has its own subject list yet, so month 3 falls back to
	// the admission default and is priced from current catalog rates.
	bill, err := f.svc.OpenMonth(f.ctx, f.admission.ID, 3)
	require.NoError(t, err)
	require.Equal(t, []string{"MATH", "PHYSICS"}, []string(bill.Subjects))

	// 1000 + 9% CGST + 9% SGST.
	require.True(t, bill.Amount.Equal(decimal.NewFromInt(1180)),
		"amount = %s", bill.Amount)
}

func TestOpenMonthInheritsNearestPriorMonth(t *testing.T) {
	f := newFixture(t, []string{"MATH", "PHYSICS"}, 6)

	_, err := f.svc.SelectSubjects(f.ctx, f.admission.ID, 2, []string{"CHEMISTRY"})
	require.NoError(t, err)

	bill, err := f.svc.OpenMonth(f.ctx, f.admission.ID, 4)
	require.NoError(t, err)
	require.Equal(t, []string{"CHEMISTRY"}, []string(bill.Subjects))
	require.True(t, bill.Amount.Equal(decimal.NewFromInt(590)),
		"amount = %s", bill.Amount)
}

func TestSelectSubjectsReprices(t *testing.T) {
	f := newFixture(t, []string{"MATH"}, 6)

	bill, err := f.svc.SelectSubjects(f.ctx, f.admission.ID, 1, []string{"MATH", "PHYSICS", "CHEMISTRY"})
	require.NoError(t, err)
	require.True(t, bill.Amount.Equal(decimal.NewFromInt(1770)),
		"amount = %s", bill.Amount)

	_, err = f.svc.SelectSubjects(f.ctx, f.admission.ID, 1, []string{"BIOLOGY"})
	require.ErrorIs(t, err, catalogdomain.ErrUnknownSubject)

	_, err = f.svc.SelectSubjects(f.ctx, f.admission.ID, 1, nil)
	require.ErrorIs(t, err, boardbillingdomain.ErrInvalidSubjects)
}

func TestPaidMonthIsFrozen(t *testing.T) {
	f := newFixture(t, []string{"MATH"}, 6)

	opened, err := f.svc.OpenMonth(f.ctx, f.admission.ID, 1)
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, f.db.Model(&boardbillingdomain.MonthlyBill{}).
		Where("id = ?", opened.ID).
		Updates(map[string]any{
			"status":    admissiondomain.InstallmentStatusPaid,
			"frozen_at": now,
		}).Error)

	_, err = f.svc.SelectSubjects(f.ctx, f.admission.ID, 1, []string{"CHEMISTRY"})
	require.ErrorIs(t, err, boardbillingdomain.ErrMonthFrozen)

	// Opening a frozen month returns it untouched even after a price
	// change in the catalog.
	frozen, err := f.svc.OpenMonth(f.ctx, f.admission.ID, 1)
	require.NoError(t, err)
	require.True(t, frozen.Amount.Equal(opened.Amount))
}

func TestMonthValidation(t *testing.T) {
	f := newFixture(t, []string{"MATH"}, 3)

	_, err := f.svc.OpenMonth(f.ctx, f.admission.ID, 9)
	require.ErrorIs(t, err, boardbillingdomain.ErrInvalidMonth)

	_, err = f.svc.OpenMonth(f.ctx, snowflake.ID(12345), 1)
	require.ErrorIs(t, err, boardbillingdomain.ErrNotFound)
}
