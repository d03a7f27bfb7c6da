// Package reminder sends payment-reminder emails for installments and
// monthly bills that are coming due or overdue.
package reminder

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/providers/email"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// resendAfter keeps a row from being reminded more than once a day even
// when cycles run back to back.
const resendAfter = 24 * time.Hour

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
	Email  email.Provider
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	email email.Provider

	daysOut       int
	instituteName string
}

func NewService(p Params) *Service {
	daysOut := p.Config.Billing.ReminderDaysOut
	if daysOut <= 0 {
		daysOut = 3
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reminder.service"),
		clock: p.Clock,
		email: p.Email,

		daysOut:       daysOut,
		instituteName: p.Config.Billing.InstituteName,
	}
}

// dueRow is one reminder candidate joined with its student contact.
type dueRow struct {
	RowID         snowflake.ID
	DueDate       time.Time
	Amount        decimal.Decimal
	Status        admissiondomain.InstallmentStatus
	FirstName     string
	LastName      string
	StudentEmail  string
	GuardianName  string
	GuardianEmail string
	CourseName    string
}

// Run scans both billing tables once and returns how many reminders
// were sent.
func (s *Service) Run(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 50
	}

	now := s.clock.Now()
	sent := 0

	installments, err := s.dueRows(ctx, "installments", now, batchSize)
	if err != nil {
		return sent, err
	}
	n, err := s.remind(ctx, "installments", installments, now)
	sent += n
	if err != nil {
		return sent, err
	}

	bills, err := s.dueRows(ctx, "monthly_bills", now, batchSize)
	if err != nil {
		return sent, err
	}
	n, err = s.remind(ctx, "monthly_bills", bills, now)
	sent += n
	return sent, err
}

func (s *Service) dueRows(ctx context.Context, table string, now time.Time, limit int) ([]dueRow, error) {
	cutoff := now.Add(time.Duration(s.daysOut) * 24 * time.Hour)
	resendBefore := now.Add(-resendAfter)

	var rows []dueRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT b.id AS row_id, b.due_date, b.amount, b.status,
		        st.first_name, st.last_name, st.email AS student_email,
		        st.guardian_name, st.guardian_email,
		        c.name AS course_name
		 FROM `+table+` b
		 JOIN admissions a ON a.id = b.admission_id
		 JOIN students st ON st.id = a.student_id
		 JOIN courses c ON c.id = a.course_id
		 WHERE b.status IN ? AND b.due_date <= ?
		   AND (b.last_reminded_at IS NULL OR b.last_reminded_at <= ?)
		 ORDER BY b.due_date
		 LIMIT ?`,
		[]admissiondomain.InstallmentStatus{
			admissiondomain.InstallmentStatusPending,
			admissiondomain.InstallmentStatusOverdue,
		},
		cutoff,
		resendBefore,
		limit,
	).Scan(&rows).Error
	return rows, err
}

func (s *Service) remind(ctx context.Context, table string, rows []dueRow, now time.Time) (int, error) {
	sent := 0
	for _, row := range rows {
		to := strings.TrimSpace(row.GuardianEmail)
		if to == "" {
			to = strings.TrimSpace(row.StudentEmail)
		}
		if to == "" {
			s.log.Debug("no contact email, skipping reminder",
				zap.String("table", table),
				zap.String("row_id", row.RowID.String()),
			)
			continue
		}

		overdue := row.Status == admissiondomain.InstallmentStatusOverdue
		dueWord := "due"
		if overdue {
			dueWord = "overdue"
		}
		guardian := strings.TrimSpace(row.GuardianName)
		if guardian == "" {
			guardian = "Parent/Guardian"
		}

		data := map[string]any{
			"GuardianName":  guardian,
			"StudentName":   strings.TrimSpace(row.FirstName + " " + row.LastName),
			"CourseName":    row.CourseName,
			"Amount":        row.Amount.StringFixed(2),
			"DueDate":       row.DueDate.Format("02 Jan 2006"),
			"DueWord":       dueWord,
			"IsOverdue":     overdue,
			"InstituteName": s.instituteName,
		}
		subject := "Fee payment reminder"
		if overdue {
			subject = "Overdue fee payment"
		}

		if err := s.email.SendTemplate(ctx, []string{to}, "payment_reminder", subject, data); err != nil {
			s.log.Warn("reminder send failed",
				zap.String("table", table),
				zap.String("row_id", row.RowID.String()),
				zap.Error(err),
			)
			continue
		}

		err := s.db.WithContext(ctx).
			Table(table).
			Where("id = ?", row.RowID).
			Update("last_reminded_at", now).Error
		if err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
