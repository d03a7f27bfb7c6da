package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	boardbillingdomain "github.com/coachdesk/coachdesk/internal/boardbilling/domain"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/feeschedule"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/db/pagination"
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
	Clock      clock.Clock
	Config     config.Config
	CatalogSvc catalogdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	catalogSvc catalogdomain.Service
	taxRate    decimal.Decimal

	admissionRepo   repository.Repository[admissiondomain.Admission]
	installmentRepo repository.Repository[admissiondomain.Installment]
}

func NewService(p ServiceParam) admissiondomain.Service {
	taxRate, err := decimal.NewFromString(p.Config.Billing.GSTRatePercent)
	if err != nil || taxRate.IsNegative() {
		taxRate = feeschedule.DefaultGSTRatePercent
	}

	return &Service{
		db:  p.DB,
		log: p.Log.Named("admission.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		catalogSvc: p.CatalogSvc,
		taxRate:    taxRate,

		admissionRepo:   repository.ProvideStore[admissiondomain.Admission](p.DB),
		installmentRepo: repository.ProvideStore[admissiondomain.Installment](p.DB),
	}
}

func (s *Service) CreateOneTime(ctx context.Context, req admissiondomain.CreateOneTimeRequest) (*admissiondomain.AdmissionDetail, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, admissiondomain.ErrInvalidBranch
	}

	course, err := s.catalogSvc.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Type != catalogdomain.CourseTypeOneTime {
		return nil, admissiondomain.ErrInvalidCourse
	}

	baseFees, err := s.catalogSvc.BaseFees(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	admittedAt := s.clock.Now()
	schedule, err := feeschedule.ComputeSchedule(feeschedule.Input{
		BaseFees:             baseFees,
		FeeWaiver:            req.FeeWaiver,
		PreviousBalance:      req.PreviousBalance,
		DownPayment:          req.DownPayment,
		NumberOfInstallments: req.NumberOfInstallments,
		TaxRatePercent:       s.taxRate,
		StartDate:            admittedAt,
	})
	if err != nil {
		return nil, err
	}

	admission := s.newAdmission(branchID, req.StudentID, course.ID, admissiondomain.AdmissionTypeOneTime, admittedAt)
	admission.BaseFees = baseFees
	admission.FeeWaiver = req.FeeWaiver
	admission.PreviousBalance = req.PreviousBalance
	admission.DownPayment = req.DownPayment
	admission.NumberOfInstallments = req.NumberOfInstallments
	applySchedule(admission, schedule)

	installments := make([]admissiondomain.Installment, 0, len(schedule.Installments))
	for _, draft := range schedule.Installments {
		installments = append(installments, admissiondomain.Installment{
			ID:          s.genID.Generate(),
			AdmissionID: admission.ID,
			Number:      draft.Number,
			DueDate:     draft.DueDate,
			Amount:      draft.Amount,
			Status:      admissiondomain.InstallmentStatusPending,
			PaidAmount:  decimal.Zero,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admission).Error; err != nil {
			return err
		}
		for i := range installments {
			if err := tx.Create(&installments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !schedule.ExcessAmount.IsZero() {
		s.log.Warn("admission down payment exceeds total fees",
			zap.String("admission_id", admission.ID.String()),
			zap.String("excess_amount", schedule.ExcessAmount.String()),
		)
	}
	s.log.Info("one-time admission created",
		zap.String("admission_id", admission.ID.String()),
		zap.String("total_fees", admission.TotalFees.String()),
		zap.Int("installments", len(installments)),
	)

	return &admissiondomain.AdmissionDetail{Admission: *admission, Installments: installments}, nil
}

func (s *Service) CreateBoard(ctx context.Context, req admissiondomain.CreateBoardRequest) (*admissiondomain.AdmissionDetail, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, admissiondomain.ErrInvalidBranch
	}
	if len(req.Subjects) == 0 {
		return nil, admissiondomain.ErrInvalidSubjects
	}

	course, err := s.catalogSvc.GetCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if course.Type != catalogdomain.CourseTypeBoard || course.DurationMonths < 1 {
		return nil, admissiondomain.ErrInvalidCourse
	}

	prices, err := s.catalogSvc.SubjectPrices(ctx, course.ID, req.Subjects)
	if err != nil {
		return nil, err
	}

	monthlyTaxable := decimal.Zero
	for _, price := range prices {
		monthlyTaxable = monthlyTaxable.Add(price)
	}

	admittedAt := s.clock.Now()
	baseFees := monthlyTaxable.Mul(decimal.NewFromInt(int64(course.DurationMonths)))
	schedule, err := feeschedule.ComputeSchedule(feeschedule.Input{
		BaseFees:             baseFees,
		FeeWaiver:            req.FeeWaiver,
		PreviousBalance:      req.PreviousBalance,
		DownPayment:          req.DownPayment,
		NumberOfInstallments: course.DurationMonths,
		TaxRatePercent:       s.taxRate,
		StartDate:            admittedAt,
	})
	if err != nil {
		return nil, err
	}

	monthlyAmount, err := feeschedule.MonthlyAmount(prices, s.taxRate)
	if err != nil {
		return nil, err
	}

	admission := s.newAdmission(branchID, req.StudentID, course.ID, admissiondomain.AdmissionTypeBoard, admittedAt)
	admission.BaseFees = baseFees
	admission.FeeWaiver = req.FeeWaiver
	admission.PreviousBalance = req.PreviousBalance
	admission.DownPayment = req.DownPayment
	admission.DurationMonths = course.DurationMonths
	admission.DefaultSubjects = req.Subjects
	applySchedule(admission, schedule)

	// Board months are priced independently, not split from the total.
	// Subject lists stay empty here: an untouched month inherits from the
	// nearest edited prior month (or the admission default) when opened,
	// so pre-filling would pin every month to the admission-time set.
	bills := make([]boardbillingdomain.MonthlyBill, 0, course.DurationMonths)
	for monthNo := 1; monthNo <= course.DurationMonths; monthNo++ {
		bills = append(bills, boardbillingdomain.MonthlyBill{
			ID:          s.genID.Generate(),
			AdmissionID: admission.ID,
			MonthNo:     monthNo,
			DueDate:     feeschedule.AddCalendarMonths(admittedAt, monthNo),
			Amount:      monthlyAmount,
			Status:      admissiondomain.InstallmentStatusPending,
			PaidAmount:  decimal.Zero,
		})
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admission).Error; err != nil {
			return err
		}
		for i := range bills {
			if err := tx.Create(&bills[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("board admission created",
		zap.String("admission_id", admission.ID.String()),
		zap.Int("duration_months", course.DurationMonths),
		zap.String("monthly_amount", monthlyAmount.String()),
	)

	return &admissiondomain.AdmissionDetail{Admission: *admission}, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*admissiondomain.AdmissionDetail, error) {
	admission, err := s.admissionRepo.FindOne(ctx, &admissiondomain.Admission{ID: id})
	if err != nil {
		return nil, err
	}
	if admission == nil {
		return nil, admissiondomain.ErrNotFound
	}

	detail := &admissiondomain.AdmissionDetail{Admission: *admission}
	if admission.Type == admissiondomain.AdmissionTypeOneTime {
		rows, err := s.installmentRepo.Find(ctx,
			&admissiondomain.Installment{AdmissionID: admission.ID},
			option.WithOrder("number ASC"),
		)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			detail.Installments = append(detail.Installments, *row)
		}
	}
	return detail, nil
}

func (s *Service) List(ctx context.Context, req admissiondomain.ListAdmissionsRequest) (*admissiondomain.ListAdmissionsResponse, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, admissiondomain.ErrInvalidBranch
	}

	size := req.Pagination.PageSize
	if size < 1 {
		size = 10
	}

	query := &admissiondomain.Admission{BranchID: branchID, Type: req.Type}
	if req.StudentID != nil {
		query.StudentID = *req.StudentID
	}

	opts := []option.QueryOption{
		option.WithOrder("id DESC"),
		option.WithLimit(size + 1),
	}
	if req.Pagination.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.Pagination.PageToken)
		if err != nil {
			return nil, admissiondomain.ErrInvalidID
		}
		opts = append(opts, option.WithCondition("id < ?", cursor.ID))
	}

	rows, err := s.admissionRepo.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}

	pageInfo, rows := pagination.BuildCursorPageInfo(rows, size, func(a *admissiondomain.Admission) string {
		return a.ID.String()
	})

	admissions := make([]admissiondomain.Admission, 0, len(rows))
	for _, row := range rows {
		admissions = append(admissions, *row)
	}
	return &admissiondomain.ListAdmissionsResponse{Admissions: admissions, PageInfo: pageInfo}, nil
}

func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int, error) {
	result := s.db.WithContext(ctx).
		Model(&admissiondomain.Installment{}).
		Where("status = ? AND due_date < ?", admissiondomain.InstallmentStatusPending, asOf.UTC()).
		Update("status", admissiondomain.InstallmentStatusOverdue)
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (s *Service) newAdmission(branchID, studentID, courseID snowflake.ID, kind admissiondomain.AdmissionType, admittedAt time.Time) *admissiondomain.Admission {
	return &admissiondomain.Admission{
		ID:         s.genID.Generate(),
		BranchID:   branchID,
		StudentID:  studentID,
		CourseID:   courseID,
		Type:       kind,
		AdmittedAt: admittedAt,
	}
}

func applySchedule(admission *admissiondomain.Admission, schedule *feeschedule.Schedule) {
	admission.TaxRatePercent = schedule.TaxRatePercent
	admission.TaxableAmount = schedule.TaxableAmount
	admission.CGSTAmount = schedule.CGSTAmount
	admission.SGSTAmount = schedule.SGSTAmount
	admission.TotalFees = schedule.TotalFees
	admission.RemainingAmount = schedule.RemainingAmount
	admission.ExcessAmount = schedule.ExcessAmount
}
