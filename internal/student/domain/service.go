package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	Create(ctx context.Context, req CreateStudentRequest) (*Student, error)
	Get(ctx context.Context, id snowflake.ID) (*Student, error)
	List(ctx context.Context, req ListStudentsRequest) ([]Student, error)
	Update(ctx context.Context, id snowflake.ID, req UpdateStudentRequest) (*Student, error)
	FindByPhone(ctx context.Context, phone string) (*Student, error)
}

type CreateStudentRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	GuardianEmail string `json:"guardian_email"`
}

type ListStudentsRequest struct {
	Search string
}

type UpdateStudentRequest struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Phone         *string `json:"phone,omitempty"`
	Email         *string `json:"email,omitempty"`
	Address       *string `json:"address,omitempty"`
	GuardianName  *string `json:"guardian_name,omitempty"`
	GuardianPhone *string `json:"guardian_phone,omitempty"`
	GuardianEmail *string `json:"guardian_email,omitempty"`
}
