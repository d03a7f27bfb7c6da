package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
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
	studentRepo repository.Repository[studentdomain.Student]
}

func NewService(p ServiceParam) studentdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("student.service"),

		genID:       p.GenID,
		studentRepo: repository.ProvideStore[studentdomain.Student](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req studentdomain.CreateStudentRequest) (*studentdomain.Student, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, studentdomain.ErrInvalidBranch
	}

	student := &studentdomain.Student{
		ID:            s.genID.Generate(),
		BranchID:      branchID,
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Phone:         strings.TrimSpace(req.Phone),
		Email:         strings.TrimSpace(req.Email),
		Address:       req.Address,
		GuardianName:  req.GuardianName,
		GuardianPhone: req.GuardianPhone,
		GuardianEmail: strings.TrimSpace(req.GuardianEmail),
	}
	if err := student.Validate(); err != nil {
		return nil, err
	}

	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info("student created", zap.String("student_id", student.ID.String()))
	return student, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*studentdomain.Student, error) {
	student, err := s.studentRepo.FindOne(ctx, &studentdomain.Student{ID: id})
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, studentdomain.ErrNotFound
	}
	return student, nil
}

func (s *Service) List(ctx context.Context, req studentdomain.ListStudentsRequest) ([]studentdomain.Student, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, studentdomain.ErrInvalidBranch
	}

	opts := []option.QueryOption{option.WithOrder("created_at DESC")}
	if search := strings.TrimSpace(req.Search); search != "" {
		pattern := "%" + search + "%"
		opts = append(opts, option.WithCondition("first_name LIKE ? OR last_name LIKE ? OR phone LIKE ?", pattern, pattern, pattern))
	}

	rows, err := s.studentRepo.Find(ctx, &studentdomain.Student{BranchID: branchID}, opts...)
	if err != nil {
		return nil, err
	}

	students := make([]studentdomain.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, *row)
	}
	return students, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req studentdomain.UpdateStudentRequest) (*studentdomain.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		updates["last_name"] = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Email != nil {
		updates["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.GuardianName != nil {
		updates["guardian_name"] = *req.GuardianName
	}
	if req.GuardianPhone != nil {
		updates["guardian_phone"] = *req.GuardianPhone
	}
	if req.GuardianEmail != nil {
		updates["guardian_email"] = *req.GuardianEmail
	}
	if len(updates) == 0 {
		return student, nil
	}

	if err := s.studentRepo.Update(ctx, student.ID.String(), updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (*studentdomain.Student, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, studentdomain.ErrInvalidBranch
	}
	return s.studentRepo.FindOne(ctx, &studentdomain.Student{BranchID: branchID, Phone: strings.TrimSpace(phone)})
}
