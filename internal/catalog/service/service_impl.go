package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/coachdesk/coachdesk/pkg/db"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gosimple/slug"
)

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	courseRepo  repository.Repository[catalogdomain.Course]
	feeLineRepo repository.Repository[catalogdomain.FeeLineItem]
	subjectRepo repository.Repository[catalogdomain.Subject]
}

func NewService(p ServiceParam) catalogdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("catalog.service"),

		genID:       p.GenID,
		courseRepo:  repository.ProvideStore[catalogdomain.Course](p.DB),
		feeLineRepo: repository.ProvideStore[catalogdomain.FeeLineItem](p.DB),
		subjectRepo: repository.ProvideStore[catalogdomain.Subject](p.DB),
	}
}

func (s *Service) CreateCourse(ctx context.Context, req catalogdomain.CreateCourseRequest) (*catalogdomain.Course, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, catalogdomain.ErrInvalidBranch
	}

	course := &catalogdomain.Course{
		ID:             s.genID.Generate(),
		BranchID:       branchID,
		Name:           req.Name,
		Slug:           slug.Make(req.Name),
		Type:           req.Type,
		DurationMonths: req.DurationMonths,
		IsActive:       true,
	}
	if err := course.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(course).Error; err != nil {
			if db.IsDuplicateKeyErr(err) {
				return catalogdomain.ErrDuplicateSlug
			}
			return err
		}

		for _, line := range req.FeeLineItems {
			item := &catalogdomain.FeeLineItem{
				ID:       s.genID.Generate(),
				CourseID: course.ID,
				FeesType: line.FeesType,
				Value:    line.Value,
				IsActive: true,
			}
			if err := item.Validate(); err != nil {
				return err
			}
			if err := tx.Create(item).Error; err != nil {
				return err
			}
		}

		for _, sub := range req.Subjects {
			subject := &catalogdomain.Subject{
				ID:           s.genID.Generate(),
				CourseID:     course.ID,
				Name:         sub.Name,
				MonthlyPrice: sub.MonthlyPrice,
				IsActive:     true,
			}
			if err := subject.Validate(); err != nil {
				return err
			}
			if err := tx.Create(subject).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("course created",
		zap.String("course_id", course.ID.String()),
		zap.String("type", string(course.Type)),
	)
	return course, nil
}

func (s *Service) GetCourse(ctx context.Context, id snowflake.ID) (*catalogdomain.Course, error) {
	course, err := s.courseRepo.FindOne(ctx, &catalogdomain.Course{ID: id})
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return course, nil
}

func (s *Service) ListCourses(ctx context.Context, req catalogdomain.ListCoursesRequest) ([]catalogdomain.Course, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, catalogdomain.ErrInvalidBranch
	}

	query := &catalogdomain.Course{BranchID: branchID, Type: req.Type}
	opts := []option.QueryOption{option.WithOrder("created_at DESC")}
	if req.IsActive != nil {
		opts = append(opts, option.WithCondition("is_active = ?", *req.IsActive))
	}

	rows, err := s.courseRepo.Find(ctx, query, opts...)
	if err != nil {
		return nil, err
	}

	courses := make([]catalogdomain.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, *row)
	}
	return courses, nil
}

func (s *Service) DisableCourse(ctx context.Context, id snowflake.ID) error {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return err
	}
	return s.courseRepo.Update(ctx, course.ID.String(), map[string]any{"is_active": false})
}

func (s *Service) AddFeeLineItem(ctx context.Context, req catalogdomain.AddFeeLineItemRequest) (*catalogdomain.FeeLineItem, error) {
	if _, err := s.GetCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	item := &catalogdomain.FeeLineItem{
		ID:       s.genID.Generate(),
		CourseID: req.CourseID,
		FeesType: req.FeesType,
		Value:    req.Value,
		IsActive: true,
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if err := s.feeLineRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) ListFeeLineItems(ctx context.Context, courseID snowflake.ID) ([]catalogdomain.FeeLineItem, error) {
	rows, err := s.feeLineRepo.Find(ctx, &catalogdomain.FeeLineItem{CourseID: courseID}, option.WithOrder("created_at ASC"))
	if err != nil {
		return nil, err
	}
	items := make([]catalogdomain.FeeLineItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row)
	}
	return items, nil
}

func (s *Service) AddSubject(ctx context.Context, req catalogdomain.AddSubjectRequest) (*catalogdomain.Subject, error) {
	if _, err := s.GetCourse(ctx, req.CourseID); err != nil {
		return nil, err
	}

	subject := &catalogdomain.Subject{
		ID:           s.genID.Generate(),
		CourseID:     req.CourseID,
		Name:         req.Name,
		MonthlyPrice: req.MonthlyPrice,
		IsActive:     true,
	}
	if err := subject.Validate(); err != nil {
		return nil, err
	}
	if err := s.subjectRepo.Create(ctx, subject); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrInvalidName
		}
		return nil, err
	}
	return subject, nil
}

func (s *Service) ListSubjects(ctx context.Context, courseID snowflake.ID) ([]catalogdomain.Subject, error) {
	rows, err := s.subjectRepo.Find(ctx, &catalogdomain.Subject{CourseID: courseID}, option.WithOrder("name ASC"))
	if err != nil {
		return nil, err
	}
	subjects := make([]catalogdomain.Subject, 0, len(rows))
	for _, row := range rows {
		subjects = append(subjects, *row)
	}
	return subjects, nil
}

func (s *Service) BaseFees(ctx context.Context, courseID snowflake.ID) (decimal.Decimal, error) {
	rows, err := s.feeLineRepo.Find(ctx,
		&catalogdomain.FeeLineItem{CourseID: courseID},
		option.WithCondition("is_active = ?", true),
	)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Value)
	}
	return total, nil
}

func (s *Service) SubjectPrices(ctx context.Context, courseID snowflake.ID, names []string) ([]decimal.Decimal, error) {
	subjects, err := s.ListSubjects(ctx, courseID)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]decimal.Decimal, len(subjects))
	for _, subject := range subjects {
		if subject.IsActive {
			byName[subject.Name] = subject.MonthlyPrice
		}
	}

	prices := make([]decimal.Decimal, 0, len(names))
	for _, name := range names {
		price, ok := byName[name]
		if !ok {
			return nil, catalogdomain.ErrUnknownSubject
		}
		prices = append(prices, price)
	}
	return prices, nil
}
