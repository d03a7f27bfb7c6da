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
	paymentdomain "github.com/coachdesk/coachdesk/internal/payment/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc   paymentdomain.Service
	db    *gorm.DB
	ctx   context.Context
	node  *snowflake.Node
	clock *clock.FakeClock

	admission      *admissiondomain.Admission
	boardAdmission *admissiondomain.Admission
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
		&paymentdomain.Receipt{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := branchctx.WithBranchID(context.Background(), node.Generate())
	fakeClock := clock.NewFakeClock(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{Billing: config.BillingConfig{GSTRatePercent: "9"}}

	catalogSvc := catalogservice.NewService(catalogservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	boardSvc := boardbillingservice.NewService(boardbillingservice.ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		Config:     cfg,
		CatalogSvc: catalogSvc,
	})

	svc := NewService(ServiceParam{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Config:   cfg,
		Clock:    fakeClock,
		BoardSvc: boardSvc,
	})

	f := &fixture{svc: svc, db: db, ctx: ctx, node: node, clock: fakeClock}

	// One-time admission: three installments of 1000.
	f.admission = &admissiondomain.Admission{
		ID:         node.Generate(),
		BranchID:   node.Generate(),
		StudentID:  node.Generate(),
		CourseID:   node.Generate(),
		Type:       admissiondomain.AdmissionTypeOneTime,
		AdmittedAt: fakeClock.Now(),
	}
	require.NoError(t, db.Create(f.admission).Error)
	for no := 1; no <= 3; no++ {
		require.NoError(t, db.Create(&admissiondomain.Installment{
			ID:          node.Generate(),
			AdmissionID: f.admission.ID,
			Number:      no,
			DueDate:     fakeClock.Now().AddDate(0, no, 0),
			Amount:      decimal.NewFromInt(1000),
			Status:      admissiondomain.InstallmentStatusPending,
		}).Error)
	}

	// Board admission: one subject at 500/month, 3 months.
	course, err := catalogSvc.CreateCourse(ctx, catalogdomain.CreateCourseRequest{
		Name:           "Class 10 Board",
		Type:           catalogdomain.CourseTypeBoard,
		DurationMonths: 3,
		Subjects: []catalogdomain.SubjectInput{
			{Name: "MATH", MonthlyPrice: decimal.NewFromInt(500)},
		},
	})
	require.NoError(t, err)

	f.boardAdmission = &admissiondomain.Admission{
		ID:              node.Generate(),
		BranchID:        node.Generate(),
		StudentID:       node.Generate(),
		CourseID:        course.ID,
		Type:            admissiondomain.AdmissionTypeBoard,
		DurationMonths:  3,
		DefaultSubjects: []string{"MATH"},
		AdmittedAt:      fakeClock.Now(),
	}
	require.NoError(t, db.Create(f.boardAdmission).Error)
	for no := 1; no <= 3; no++ {
		require.NoError(t, db.Create(&boardbillingdomain.MonthlyBill{
			ID:          node.Generate(),
			AdmissionID: f.boardAdmission.ID,
			MonthNo:     no,
			DueDate:     fakeClock.Now().AddDate(0, no, 0),
			Amount:      decimal.Zero,
			Status:      admissiondomain.InstallmentStatusPending,
		}).Error)
	}

	return f
}

func (f *fixture) installment(t *testing.T, no int) *admissiondomain.Installment {
	t.Helper()
	var row admissiondomain.Installment
	require.NoError(t, f.db.
		Where("admission_id = ? AND number = ?", f.admission.ID, no).
		First(&row).Error)
	return &row
}

func (f *fixture) month(t *testing.T, no int) *boardbillingdomain.MonthlyBill {
	t.Helper()
	var row boardbillingdomain.MonthlyBill
	require.NoError(t, f.db.
		Where("admission_id = ? AND month_no = ?", f.boardAdmission.ID, no).
		First(&row).Error)
	return &row
}

func TestRecordInstallmentPaymentCash(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusIssued, receipt.Status)
	require.NotEmpty(t, receipt.ReceiptNo)
	require.True(t, receipt.ExcessAmount.IsZero())

	row := f.installment(t, 1)
	require.Equal(t, admissiondomain.InstallmentStatusPaid, row.Status)
	require.True(t, row.PaidAmount.Equal(decimal.NewFromInt(1000)))
	require.Equal(t, admissiondomain.PaymentMethodCash, row.PaymentMethod)
}

func TestRecordInstallmentPaymentTwiceFails(t *testing.T) {
	f := newFixture(t)

	req := paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 2,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodUPI,
		TransactionID: "upi-9981",
	}
	_, err := f.svc.RecordInstallmentPayment(f.ctx, req)
	require.NoError(t, err)

	_, err = f.svc.RecordInstallmentPayment(f.ctx, req)
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)
}

func TestOverpaymentRecordsExcess(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1320),
		Method:        admissiondomain.PaymentMethodCard,
	})
	require.NoError(t, err)
	require.True(t, receipt.ExcessAmount.Equal(decimal.NewFromInt(320)),
		"excess = %s", receipt.ExcessAmount)

	// Settled in full regardless of the surplus.
	require.Equal(t, admissiondomain.InstallmentStatusPaid, f.installment(t, 1).Status)
}

func TestShortPaymentRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(400),
		Method:        admissiondomain.PaymentMethodCash,
	})
	require.ErrorIs(t, err, paymentdomain.ErrInvalidAmount)
	require.Equal(t, admissiondomain.InstallmentStatusPending, f.installment(t, 1).Status)
}

func TestChequeClearanceFlow(t *testing.T) {
	f := newFixture(t)

	chequeDate := f.clock.Now()
	receipt, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodCheque,
		ChequeNo:      "001234",
		ChequeDate:    &chequeDate,
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusPendingClearance, receipt.Status)
	require.Equal(t, admissiondomain.InstallmentStatusPendingClearance, f.installment(t, 1).Status)

	// A second attempt while the cheque is in clearance is a double pay.
	_, err = f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodCash,
	})
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)

	cleared, err := f.svc.ConfirmClearance(f.ctx, receipt.ID)
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusIssued, cleared.Status)
	require.Equal(t, admissiondomain.InstallmentStatusPaid, f.installment(t, 1).Status)

	_, err = f.svc.ConfirmClearance(f.ctx, receipt.ID)
	require.ErrorIs(t, err, paymentdomain.ErrNotInClearance)
}

func TestBounceChequeReopensInstallment(t *testing.T) {
	f := newFixture(t)

	receipt, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodDemandDraft,
		ChequeNo:      "DD-7812",
	})
	require.NoError(t, err)

	voided, err := f.svc.BounceCheque(f.ctx, receipt.ID, "returned by bank")
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusVoid, voided.Status)

	row := f.installment(t, 1)
	require.Equal(t, admissiondomain.InstallmentStatusPending, row.Status)
	require.True(t, row.PaidAmount.IsZero())
	require.Empty(t, row.ChequeNo)

	// The installment is payable again after the bounce.
	_, err = f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodCash,
	})
	require.NoError(t, err)
}

func TestChequeRequiresChequeNo(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
		AdmissionID:   f.admission.ID,
		InstallmentNo: 1,
		Amount:        decimal.NewFromInt(1000),
		Method:        admissiondomain.PaymentMethodCheque,
	})
	require.ErrorIs(t, err, paymentdomain.ErrChequeDetailMissing)
}

func TestRecordMonthlyBillPaymentFreezesMonth(t *testing.T) {
	f := newFixture(t)

	// 500 + 9% CGST + 9% SGST = 590, resolved on open before payment.
	receipt, err := f.svc.RecordMonthlyBillPayment(f.ctx, paymentdomain.RecordMonthlyBillPaymentRequest{
		AdmissionID: f.boardAdmission.ID,
		MonthNo:     1,
		Amount:      decimal.NewFromInt(590),
		Method:      admissiondomain.PaymentMethodUPI,
	})
	require.NoError(t, err)
	require.NotNil(t, receipt.MonthlyBillID)

	row := f.month(t, 1)
	require.Equal(t, admissiondomain.InstallmentStatusPaid, row.Status)
	require.NotNil(t, row.FrozenAt)

	_, err = f.svc.RecordMonthlyBillPayment(f.ctx, paymentdomain.RecordMonthlyBillPaymentRequest{
		AdmissionID: f.boardAdmission.ID,
		MonthNo:     1,
		Amount:      decimal.NewFromInt(590),
		Method:      admissiondomain.PaymentMethodCash,
	})
	require.ErrorIs(t, err, paymentdomain.ErrAlreadyPaid)
}

func TestBounceChequeReopensMonthlyBill(t *testing.T) {
	f := newFixture(t)

	chequeDate := f.clock.Now()
	receipt, err := f.svc.RecordMonthlyBillPayment(f.ctx, paymentdomain.RecordMonthlyBillPaymentRequest{
		AdmissionID: f.boardAdmission.ID,
		MonthNo:     1,
		Amount:      decimal.NewFromInt(590),
		Method:      admissiondomain.PaymentMethodCheque,
		ChequeNo:    "004521",
		ChequeDate:  &chequeDate,
	})
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusPendingClearance, receipt.Status)

	row := f.month(t, 1)
	require.Equal(t, admissiondomain.InstallmentStatusPendingClearance, row.Status)
	require.Equal(t, "004521", row.ChequeNo)
	require.Nil(t, row.FrozenAt)

	voided, err := f.svc.BounceCheque(f.ctx, receipt.ID, "signature mismatch")
	require.NoError(t, err)
	require.Equal(t, paymentdomain.ReceiptStatusVoid, voided.Status)

	row = f.month(t, 1)
	require.Equal(t, admissiondomain.InstallmentStatusPending, row.Status)
	require.True(t, row.PaidAmount.IsZero())
	require.Empty(t, row.ChequeNo)
	require.Nil(t, row.ChequeDate)
	require.Nil(t, row.FrozenAt)

	// The month is payable again after the bounce.
	_, err = f.svc.RecordMonthlyBillPayment(f.ctx, paymentdomain.RecordMonthlyBillPaymentRequest{
		AdmissionID: f.boardAdmission.ID,
		MonthNo:     1,
		Amount:      decimal.NewFromInt(590),
		Method:      admissiondomain.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.Equal(t, admissiondomain.InstallmentStatusPaid, f.month(t, 1).Status)
}

func TestListReceipts(t *testing.T) {
	f := newFixture(t)

	for no := 1; no <= 2; no++ {
		_, err := f.svc.RecordInstallmentPayment(f.ctx, paymentdomain.RecordInstallmentPaymentRequest{
			AdmissionID:   f.admission.ID,
			InstallmentNo: no,
			Amount:        decimal.NewFromInt(1000),
			Method:        admissiondomain.PaymentMethodCash,
		})
		require.NoError(t, err)
	}

	receipts, err := f.svc.ListReceipts(f.ctx, f.admission.ID)
	require.NoError(t, err)
	require.Len(t, receipts, 2)

	byNo, err := f.svc.GetReceiptByNo(f.ctx, receipts[0].ReceiptNo)
	require.NoError(t, err)
	require.Equal(t, receipts[0].ID, byNo.ID)
}
