package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	"github.com/coachdesk/coachdesk/pkg/db/option"
	"github.com/coachdesk/coachdesk/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	StudentSvc studentdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	studentSvc studentdomain.Service
	leadRepo   repository.Repository[leaddomain.Lead]
	noteRepo   repository.Repository[leaddomain.FollowUpNote]
}

func NewService(p ServiceParam) leaddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("lead.service"),

		genID:      p.GenID,
		studentSvc: p.StudentSvc,
		leadRepo:   repository.ProvideStore[leaddomain.Lead](p.DB),
		noteRepo:   repository.ProvideStore[leaddomain.FollowUpNote](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req leaddomain.CreateLeadRequest) (*leaddomain.Lead, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, leaddomain.ErrInvalidBranch
	}

	lead := &leaddomain.Lead{
		ID:               s.genID.Generate(),
		BranchID:         branchID,
		Name:             strings.TrimSpace(req.Name),
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.TrimSpace(req.Email),
		InterestedCourse: req.InterestedCourse,
		Source:           req.Source,
		Status:           leaddomain.LeadStatusNew,
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info("lead created", zap.String("lead_id", lead.ID.String()), zap.String("source", lead.Source))
	return lead, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*leaddomain.Lead, error) {
	lead, err := s.leadRepo.FindOne(ctx, &leaddomain.Lead{ID: id})
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, leaddomain.ErrNotFound
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, req leaddomain.ListLeadsRequest) ([]leaddomain.Lead, error) {
	branchID, ok := branchctx.BranchIDFromContext(ctx)
	if !ok {
		return nil, leaddomain.ErrInvalidBranch
	}

	query := &leaddomain.Lead{BranchID: branchID}
	if req.Status != "" {
		if !req.Status.Valid() {
			return nil, leaddomain.ErrInvalidStatus
		}
		query.Status = req.Status
	}

	rows, err := s.leadRepo.Find(ctx, query, option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}

	leads := make([]leaddomain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, *row)
	}
	return leads, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status leaddomain.LeadStatus) (*leaddomain.Lead, error) {
	if !status.Valid() {
		return nil, leaddomain.ErrInvalidStatus
	}
	// Conversion owns the CONVERTED transition so the student record is
	// never skipped.
	if status == leaddomain.LeadStatusConverted {
		return nil, leaddomain.ErrInvalidStatus
	}

	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == leaddomain.LeadStatusConverted {
		return nil, leaddomain.ErrAlreadyConverted
	}

	if err := s.leadRepo.Update(ctx, lead.ID.String(), map[string]any{"status": status}); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) AddFollowUp(ctx context.Context, id snowflake.ID, note string, nextFollowUpAt *time.Time) (*leaddomain.FollowUpNote, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == leaddomain.LeadStatusConverted || lead.Status == leaddomain.LeadStatusLost {
		return nil, leaddomain.ErrLeadClosed
	}
	if strings.TrimSpace(note) == "" {
		return nil, leaddomain.ErrInvalidName
	}

	record := &leaddomain.FollowUpNote{
		ID:     s.genID.Generate(),
		LeadID: lead.ID,
		Note:   note,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		updates := map[string]any{"status": leaddomain.LeadStatusFollowUp}
		if nextFollowUpAt != nil {
			updates["next_follow_up_at"] = nextFollowUpAt.UTC()
		}
		return tx.Model(&leaddomain.Lead{}).Where("id = ?", lead.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) ListFollowUps(ctx context.Context, id snowflake.ID) ([]leaddomain.FollowUpNote, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.noteRepo.Find(ctx, &leaddomain.FollowUpNote{LeadID: id}, option.WithOrder("created_at DESC"))
	if err != nil {
		return nil, err
	}
	notes := make([]leaddomain.FollowUpNote, 0, len(rows))
	for _, row := range rows {
		notes = append(notes, *row)
	}
	return notes, nil
}

func (s *Service) Convert(ctx context.Context, id snowflake.ID) (*studentdomain.Student, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status == leaddomain.LeadStatusConverted {
		return nil, leaddomain.ErrAlreadyConverted
	}
	if lead.Status == leaddomain.LeadStatusLost {
		return nil, leaddomain.ErrLeadClosed
	}

	first, last := splitName(lead.Name)
	student, err := s.studentSvc.Create(ctx, studentdomain.CreateStudentRequest{
		FirstName: first,
		LastName:  last,
		Phone:     lead.Phone,
		Email:     lead.Email,
	})
	if err != nil {
		return nil, err
	}

	err = s.leadRepo.Update(ctx, lead.ID.String(), map[string]any{
		"status":     leaddomain.LeadStatusConverted,
		"student_id": student.ID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("student_id", student.ID.String()),
	)
	return student, nil
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full, ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
