package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	boardbillingservice "github.com/coachdesk/coachdesk/internal/boardbilling/service"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	catalogservice "github.com/coachdesk/coachdesk/internal/catalog/service"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc        admissiondomain.Service
	catalogSvc catalogdomain.Service
	db         *gorm.DB
	ctx        context.Context
	clock      *clock.FakeClock
	node       *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
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
	fakeClock := clock.NewFakeClock(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fakeClock,
		Config:     config.Config{Billing: config.BillingConfig{GSTRatePercent: "9"}},
		CatalogSvc: catalogSvc,
	})

	return &fixture{svc: svc, catalogSvc: catalogSvc, db: db, ctx: ctx, clock: fakeClock, node: node}
}

func (f *fixture) oneTimeCourse(t *testing.T) *catalogdomain.Course {
	t.Helper()
	course, err := f.catalogSvc.CreateCourse(f.ctx, catalogdomain.CreateCourseRequest{
		Name: "JEE Crash Course",
		Type: catalogdomain.CourseTypeOneTime,
		FeeLineItems: []catalogdomain.FeeLineInput{
			{FeesType: "TUITION", Value: decimal.NewFromInt(8000)},
			{FeesType: "MATERIAL", Value: decimal.NewFromInt(2000)},
		},
	})
	require.NoError(t, err)
	return course
}

func (f *fixture) boardCourse(t *testing.T, months int) *catalogdomain.Course {
	t.Helper()
	course, err := f.catalogSvc.CreateCourse(f.ctx, catalogdomain.CreateCourseRequest{
		Name:           "Class 10 Board",
		Type:           catalogdomain.CourseTypeBoard,
		DurationMonths: months,
		Subjects: []catalogdomain.SubjectInput{
			{Name: "MATH", MonthlyPrice: decimal.NewFromInt(600)},
			{Name: "SCIENCE", MonthlyPrice: decimal.NewFromInt(400)},
		},
	})
	require.NoError(t, err)
	return course
}

func TestCreateOneTimePersistsSchedule(t *testing.T) {
	f := newFixture(t)
	course := f.oneTimeCourse(t)

	detail, err := f.svc.CreateOneTime(f.ctx, admissiondomain.CreateOneTimeRequest{
		StudentID:            f.node.Generate(),
		CourseID:             course.ID,
		FeeWaiver:            decimal.NewFromInt(1000),
		PreviousBalance:      decimal.NewFromInt(1000),
		DownPayment:          decimal.NewFromInt(3000),
		NumberOfInstallments: 3,
	})
	require.NoError(t, err)

	adm := detail.Admission
	require.True(t, adm.BaseFees.Equal(decimal.NewFromInt(10000)))
	require.True(t, adm.TaxableAmount.Equal(decimal.NewFromInt(9000)))
	require.True(t, adm.CGSTAmount.Equal(decimal.NewFromInt(810)))
	require.True(t, adm.SGSTAmount.Equal(decimal.NewFromInt(810)))
	require.True(t, adm.TotalFees.Equal(decimal.NewFromInt(11620)))
	require.True(t, adm.RemainingAmount.Equal(decimal.NewFromInt(8620)))

	require.Len(t, detail.Installments, 3)
	require.True(t, detail.Installments[0].Amount.Equal(decimal.NewFromInt(2874)))
	require.True(t, detail.Installments[1].Amount.Equal(decimal.NewFromInt(2874)))
	require.True(t, detail.Installments[2].Amount.Equal(decimal.NewFromInt(2872)))

	// Due dates advance one calendar month at a time from admission.
	require.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), detail.Installments[0].DueDate)
	require.Equal(t, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC), detail.Installments[2].DueDate)

	// The schedule is durable, not just returned.
	got, err := f.svc.Get(f.ctx, adm.ID)
	require.NoError(t, err)
	require.Len(t, got.Installments, 3)
	require.Equal(t, admissiondomain.InstallmentStatusPending, got.Installments[0].Status)
}

func TestCreateOneTimeRejectsBoardCourse(t *testing.T) {
	f := newFixture(t)
	course := f.boardCourse(t, 6)

	_, err := f.svc.CreateOneTime(f.ctx, admissiondomain.CreateOneTimeRequest{
		StudentID:            f.node.Generate(),
		CourseID:             course.ID,
		NumberOfInstallments: 2,
	})
	require.ErrorIs(t, err, admissiondomain.ErrInvalidCourse)
}

func TestCreateBoardMaterializesMonthlyBills(t *testing.T) {
	f := newFixture(t)
	course := f.boardCourse(t, 6)

	detail, err := f.svc.CreateBoard(f.ctx, admissiondomain.CreateBoardRequest{
		StudentID: f.node.Generate(),
		CourseID:  course.ID,
		Subjects:  []string{"MATH", "SCIENCE"},
	})
	require.NoError(t, err)
	require.Empty(t, detail.Installments)
	require.Equal(t, 6, detail.Admission.DurationMonths)
	require.Equal(t, []string{"MATH", "SCIENCE"}, []string(detail.Admission.DefaultSubjects))

	var bills []boardbillingdomain.MonthlyBill
	require.NoError(t, f.db.
		Where("admission_id = ?", detail.Admission.ID).
		Order("month_no ASC").
		Find(&bills).Error)
	require.Len(t, bills, 6)

	// Each month is the tax-inclusive subject total: 1000 * 1.18. The
	// subject lists stay empty so inheritance stays live until a month
	// is opened or edited.
	for _, bill := range bills {
		require.True(t, bill.Amount.Equal(decimal.NewFromInt(1180)), "month %d = %s", bill.MonthNo, bill.Amount)
		require.Equal(t, admissiondomain.InstallmentStatusPending, bill.Status)
		require.Empty(t, bill.Subjects)
	}
	require.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), bills[0].DueDate)
	require.Equal(t, time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC), bills[5].DueDate)
}

func TestBoardSubjectEditPropagatesToLaterMonths(t *testing.T) {
	f := newFixture(t)
	course := f.boardCourse(t, 6)

	detail, err := f.svc.CreateBoard(f.ctx, admissiondomain.CreateBoardRequest{
		StudentID: f.node.Generate(),
		CourseID:  course.ID,
		Subjects:  []string{"MATH", "SCIENCE"},
	})
	require.NoError(t, err)

	boardSvc := boardbillingservice.NewService(boardbillingservice.ServiceParam{
		DB:         f.db,
		Log:        zap.NewNop(),
		GenID:      f.node,
		Config:     config.Config{Billing: config.BillingConfig{GSTRatePercent: "9"}},
		CatalogSvc: f.catalogSvc,
	})

	// Narrow month 2 to SCIENCE; untouched later months follow it.
	_, err = boardSvc.SelectSubjects(f.ctx, detail.Admission.ID, 2, []string{"SCIENCE"})
	require.NoError(t, err)

	bill, err := boardSvc.OpenMonth(f.ctx, detail.Admission.ID, 4)
	require.NoError(t, err)
	require.Equal(t, []string{"SCIENCE"}, []string(bill.Subjects))
	// 400 * 1.18.
	require.True(t, bill.Amount.Equal(decimal.NewFromInt(472)), "amount = %s", bill.Amount)

	// Months before the edit still resolve the admission default.
	first, err := boardSvc.OpenMonth(f.ctx, detail.Admission.ID, 1)
	require.NoError(t, err)
	require.Equal(t, []string{"MATH", "SCIENCE"}, []string(first.Subjects))
	require.True(t, first.Amount.Equal(decimal.NewFromInt(1180)), "amount = %s", first.Amount)
}

func TestCreateBoardRejectsUnknownSubject(t *testing.T) {
	f := newFixture(t)
	course := f.boardCourse(t, 6)

	_, err := f.svc.CreateBoard(f.ctx, admissiondomain.CreateBoardRequest{
		StudentID: f.node.Generate(),
		CourseID:  course.ID,
		Subjects:  []string{"MATH", "SANSKRIT"},
	})
	require.ErrorIs(t, err, catalogdomain.ErrUnknownSubject)

	_, err = f.svc.CreateBoard(f.ctx, admissiondomain.CreateBoardRequest{
		StudentID: f.node.Generate(),
		CourseID:  course.ID,
	})
	require.ErrorIs(t, err, admissiondomain.ErrInvalidSubjects)
}

func TestListFiltersByStudent(t *testing.T) {
	f := newFixture(t)
	course := f.oneTimeCourse(t)

	studentA := f.node.Generate()
	studentB := f.node.Generate()
	for _, studentID := range []snowflake.ID{studentA, studentB} {
		_, err := f.svc.CreateOneTime(f.ctx, admissiondomain.CreateOneTimeRequest{
			StudentID:            studentID,
			CourseID:             course.ID,
			NumberOfInstallments: 2,
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.List(f.ctx, admissiondomain.ListAdmissionsRequest{StudentID: &studentA})
	require.NoError(t, err)
	require.Len(t, resp.Admissions, 1)
	require.Equal(t, studentA, resp.Admissions[0].StudentID)
}

func TestMarkOverdueFlipsDueInstallments(t *testing.T) {
	f := newFixture(t)
	course := f.oneTimeCourse(t)

	detail, err := f.svc.CreateOneTime(f.ctx, admissiondomain.CreateOneTimeRequest{
		StudentID:            f.node.Generate(),
		CourseID:             course.ID,
		NumberOfInstallments: 3,
	})
	require.NoError(t, err)

	// Two of the three installments fall due within 70 days.
	swept, err := f.svc.MarkOverdue(f.ctx, f.clock.Now().AddDate(0, 0, 70))
	require.NoError(t, err)
	require.Equal(t, 2, swept)

	got, err := f.svc.Get(f.ctx, detail.Admission.ID)
	require.NoError(t, err)
	require.Equal(t, admissiondomain.InstallmentStatusOverdue, got.Installments[0].Status)
	require.Equal(t, admissiondomain.InstallmentStatusPending, got.Installments[2].Status)
}
