package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMail struct {
	to      []string
	subject string
	data    any
}

type captureProvider struct {
	sent []sentMail
	fail bool
}

func (p *captureProvider) Send(ctx context.Context, to []string, subject string, htmlBody string) error {
	return nil
}

func (p *captureProvider) SendTemplate(ctx context.Context, to []string, templateName string, subject string, data any) error {
	if p.fail {
		return context.DeadlineExceeded
	}
	p.sent = append(p.sent, sentMail{to: to, subject: subject, data: data})
	return nil
}

type fixture struct {
	svc   *Service
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	mail  *captureProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Course{},
		&studentdomain.Student{},
		&admissiondomain.Admission{},
		&admissiondomain.Installment{},
		&boardbillingdomain.MonthlyBill{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fakeClock := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	mail := &captureProvider{}

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: fakeClock,
		Config: config.Config{
			Billing: config.BillingConfig{
				ReminderDaysOut: 3,
				InstituteName:   "Acme Coaching",
			},
		},
		Email: mail,
	})

	return &fixture{svc: svc, db: db, node: node, clock: fakeClock, mail: mail}
}

func (f *fixture) seedInstallment(t *testing.T, guardianEmail string, dueIn time.Duration, status admissiondomain.InstallmentStatus) snowflake.ID {
	t.Helper()

	course := &catalogdomain.Course{
		ID:       f.node.Generate(),
		BranchID: f.node.Generate(),
		Name:     "JEE Crash Course",
		Slug:     "jee-crash-course",
		Type:     catalogdomain.CourseTypeOneTime,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(course).Error)

	student := &studentdomain.Student{
		ID:            f.node.Generate(),
		BranchID:      course.BranchID,
		FirstName:     "Asha",
		LastName:      "Verma",
		Phone:         "9000000001",
		GuardianName:  "R Verma",
		GuardianEmail: guardianEmail,
	}
	require.NoError(t, f.db.Create(student).Error)

	admission := &admissiondomain.Admission{
		ID:         f.node.Generate(),
		BranchID:   course.BranchID,
		StudentID:  student.ID,
		CourseID:   course.ID,
		Type:       admissiondomain.AdmissionTypeOneTime,
		AdmittedAt: f.clock.Now(),
	}
	require.NoError(t, f.db.Create(admission).Error)

	installment := &admissiondomain.Installment{
		ID:          f.node.Generate(),
		AdmissionID: admission.ID,
		Number:      1,
		DueDate:     f.clock.Now().Add(dueIn),
		Amount:      decimal.NewFromInt(2874),
		Status:      status,
	}
	require.NoError(t, f.db.Create(installment).Error)
	return installment.ID
}

func TestRunSendsReminderAndStamps(t *testing.T) {
	f := newFixture(t)
	id := f.seedInstallment(t, "guardian@example.com", 48*time.Hour, admissiondomain.InstallmentStatusPending)

	sent, err := f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Len(t, f.mail.sent, 1)
	require.Equal(t, []string{"guardian@example.com"}, f.mail.sent[0].to)
	require.Equal(t, "Fee payment reminder", f.mail.sent[0].subject)

	var row admissiondomain.Installment
	require.NoError(t, f.db.First(&row, "id = ?", id).Error)
	require.NotNil(t, row.LastRemindedAt)

	// Same cycle again: the stamp suppresses a second send.
	sent, err = f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 0, sent)

	// A day later the row is eligible again.
	f.clock.Advance(25 * time.Hour)
	sent, err = f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
}

func TestRunSkipsRowsOutsideWindow(t *testing.T) {
	f := newFixture(t)
	f.seedInstallment(t, "guardian@example.com", 10*24*time.Hour, admissiondomain.InstallmentStatusPending)

	sent, err := f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 0, sent)
	require.Empty(t, f.mail.sent)
}

func TestRunOverdueSubject(t *testing.T) {
	f := newFixture(t)
	f.seedInstallment(t, "guardian@example.com", -72*time.Hour, admissiondomain.InstallmentStatusOverdue)

	sent, err := f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, "Overdue fee payment", f.mail.sent[0].subject)
}

func TestRunSkipsWithoutContactEmail(t *testing.T) {
	f := newFixture(t)
	id := f.seedInstallment(t, "", 24*time.Hour, admissiondomain.InstallmentStatusPending)

	sent, err := f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 0, sent)

	// Not stamped: a contact added later still gets this reminder.
	var row admissiondomain.Installment
	require.NoError(t, f.db.First(&row, "id = ?", id).Error)
	require.Nil(t, row.LastRemindedAt)
}

func TestRunSendFailureDoesNotStamp(t *testing.T) {
	f := newFixture(t)
	id := f.seedInstallment(t, "guardian@example.com", 24*time.Hour, admissiondomain.InstallmentStatusPending)
	f.mail.fail = true

	sent, err := f.svc.Run(context.Background(), 50)
	require.NoError(t, err)
	require.Equal(t, 0, sent)

	var row admissiondomain.Installment
	require.NoError(t, f.db.First(&row, "id = ?", id).Error)
	require.Nil(t, row.LastRemindedAt)
}
