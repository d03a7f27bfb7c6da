package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/feeschedule"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Config     config.Config
	CatalogSvc catalogdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	catalogSvc catalogdomain.Service
	taxRate    decimal.Decimal

	admissionRepo repository.Repository[admissiondomain.Admission]
	billRepo      repository.Repository[boardbillingdomain.MonthlyBill]
}

func NewService(p ServiceParam) boardbillingdomain.Service {
	taxRate, err := decimal.NewFromString(p.Config.Billing.GSTRatePercent)
	if err != nil || taxRate.IsNegative() {
		taxRate = feeschedule.DefaultGSTRatePercent
	}

	return &Service{
		db:  p.DB,
		log: p.Log.Named("boardbilling.service"),

		genID:      p.GenID,
		catalogSvc: p.CatalogSvc,
		taxRate:    taxRate,

		admissionRepo: repository.ProvideStore[admissiondomain.Admission](p.DB),
		billRepo:      repository.ProvideStore[boardbillingdomain.MonthlyBill](p.DB),
	}
}

func (s *Service) ListMonths(ctx context.Context, admissionID snowflake.ID) ([]boardbillingdomain.MonthlyBill, error) {
	if _, err := s.boardAdmission(ctx, admissionID); err != nil {
		return nil, err
	}

	rows, err := s.billRepo.Find(ctx,
		&boardbillingdomain.MonthlyBill{AdmissionID: admissionID},
		option.WithOrder("month_no ASC"),
	)
	if err != nil {
		return nil, err
	}

	bills := make([]boardbillingdomain.MonthlyBill, 0, len(rows))
	for _, row := range rows {
		bills = append(bills, *row)
	}
	return bills, nil
}

// OpenMonth re-resolves an unpaid month: effective subjects via backward
// inheritance and a fresh amount from current catalog prices. The stored
// row is updated so the payment flow always sees the resolved amount.
func (s *Service) OpenMonth(ctx context.Context, admissionID snowflake.ID, monthNo int) (*boardbillingdomain.MonthlyBill, error) {
	admission, err := s.boardAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	bills, err := s.ListMonths(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	idx := indexOfMonth(bills, monthNo)
	if idx < 0 {
		return nil, boardbillingdomain.ErrInvalidMonth
	}
	bill := bills[idx]

	if frozen(bill) {
		return &bill, nil
	}

	subjects := effectiveSubjects(bills, idx, admission.DefaultSubjects)
	if len(subjects) == 0 {
		return nil, boardbillingdomain.ErrInvalidSubjects
	}

	amount, err := s.price(ctx, admission.CourseID, subjects)
	if err != nil {
		return nil, err
	}

	bill.Subjects = subjects
	bill.Amount = amount
	if err := s.billRepo.Update(ctx, bill.ID.String(), map[string]any{
		"subjects": bill.Subjects,
		"amount":   bill.Amount,
	}); err != nil {
		return nil, err
	}

	return &bill, nil
}

func (s *Service) SelectSubjects(ctx context.Context, admissionID snowflake.ID, monthNo int, subjects []string) (*boardbillingdomain.MonthlyBill, error) {
	admission, err := s.boardAdmission(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return nil, boardbillingdomain.ErrInvalidSubjects
	}

	bill, err := s.billRepo.FindOne(ctx, &boardbillingdomain.MonthlyBill{AdmissionID: admissionID, MonthNo: monthNo})
	if err != nil {
		return nil, err
	}
	if bill == nil {
		return nil, boardbillingdomain.ErrInvalidMonth
	}
	if frozen(*bill) {
		return nil, boardbillingdomain.ErrMonthFrozen
	}

	amount, err := s.price(ctx, admission.CourseID, subjects)
	if err != nil {
		return nil, err
	}

	bill.Subjects = subjects
	bill.Amount = amount
	if err := s.billRepo.Update(ctx, bill.ID.String(), map[string]any{
		"subjects": bill.Subjects,
		"amount":   bill.Amount,
	}); err != nil {
		return nil, err
	}

	s.log.Info("month subjects updated",
		zap.String("admission_id", admissionID.String()),
		zap.Int("month_no", monthNo),
		zap.String("amount", amount.String()),
	)
	return bill, nil
}

func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	result := s.db.WithContext(ctx).
		Model(&boardbillingdomain.MonthlyBill{}).
		Where("status = ? AND due_date < ?", admissiondomain.InstallmentStatusPending, asOf.UTC()).
		Update("status", admissiondomain.InstallmentStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (s *Service) boardAdmission(ctx context.Context, admissionID snowflake.ID) (*admissiondomain.Admission, error) {
	admission, err := s.admissionRepo.FindOne(ctx, &admissiondomain.Admission{ID: admissionID})
	if err != nil {
		return nil, err
	}
	if admission == nil {
		return nil, boardbillingdomain.ErrNotFound
	}
	if admission.Type != admissiondomain.AdmissionTypeBoard {
		return nil, boardbillingdomain.ErrNotBoard
	}
	return admission, nil
}

func (s *Service) price(ctx context.Context, courseID snowflake.ID, subjects []string) (decimal.Decimal, error) {
	prices, err := s.catalogSvc.SubjectPrices(ctx, courseID, subjects)
	if err != nil {
		return decimal.Zero, err
	}
	return feeschedule.MonthlyAmount(prices, s.taxRate)
}

func frozen(bill boardbillingdomain.MonthlyBill) bool {
	return bill.FrozenAt != nil ||
		bill.Status == admissiondomain.InstallmentStatusPaid ||
		bill.Status == admissiondomain.InstallmentStatusPendingClearance
}

func indexOfMonth(bills []boardbillingdomain.MonthlyBill, monthNo int) int {
	for i, bill := range bills {
		if bill.MonthNo == monthNo {
			return i
		}
	}
	return -1
}

// effectiveSubjects resolves the month's subject set: its own if non-empty,
// else the nearest prior month's non-empty set, else the admission default.
func effectiveSubjects(bills []boardbillingdomain.MonthlyBill, idx int, defaults []string) []string {
	for i := idx; i >= 0; i-- {
		if len(bills[i].Subjects) > 0 {
			return bills[i].Subjects
		}
	}
	return defaults
}
