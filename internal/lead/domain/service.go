package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
)

type Service interface {
	Create(ctx context.Context, req CreateLeadRequest) (*Lead, error)
	Get(ctx context.Context, id snowflake.ID) (*Lead, error)
	List(ctx context.Context, req ListLeadsRequest) ([]Lead, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status LeadStatus) (*Lead, error)
	AddFollowUp(ctx context.Context, id snowflake.ID, note string, nextFollowUpAt *time.Time) (*FollowUpNote, error)
	ListFollowUps(ctx context.Context, id snowflake.ID) ([]FollowUpNote, error)

	// Convert creates a student from the lead and marks it CONVERTED.
	// Converting a converted or lost lead fails.
	Convert(ctx context.Context, id snowflake.ID) (*studentdomain.Student, error)
}

type CreateLeadRequest struct {
	Name             string        `json:"name"`
	Phone            string        `json:"phone"`
	Email            string        `json:"email"`
	InterestedCourse *snowflake.ID `json:"interested_course_id,omitempty"`
	Source           string        `json:"source"`
}

type ListLeadsRequest struct {
	Status LeadStatus
}
