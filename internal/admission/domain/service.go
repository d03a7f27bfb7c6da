package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type Service interface {
	// CreateOneTime admits a student into a lump-sum course, computing
	// and persisting the installment schedule in one transaction.
	CreateOneTime(ctx context.Context, req CreateOneTimeRequest) (*AdmissionDetail, error)

	// CreateBoard admits a student into a board course, materializing
	// one monthly bill per month of course duration.
	CreateBoard(ctx context.Context, req CreateBoardRequest) (*AdmissionDetail, error)

	Get(ctx context.Context, id snowflake.ID) (*AdmissionDetail, error)
	List(ctx context.Context, req ListAdmissionsRequest) (*ListAdmissionsResponse, error)

	// MarkOverdue flips PENDING installments with a due date before asOf
	// to OVERDUE. Returns the number of rows updated.
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}

// CreateOneTimeRequest and CreateBoardRequest are deliberately separate
// types: the two admission kinds share no optional field soup.
type CreateOneTimeRequest struct {
	StudentID            snowflake.ID    `json:"student_id"`
	CourseID             snowflake.ID    `json:"course_id"`
	FeeWaiver            decimal.Decimal `json:"fee_waiver"`
	PreviousBalance      decimal.Decimal `json:"previous_balance"`
	DownPayment          decimal.Decimal `json:"down_payment"`
	NumberOfInstallments int             `json:"number_of_installments"`
}

type CreateBoardRequest struct {
	StudentID       snowflake.ID    `json:"student_id"`
	CourseID        snowflake.ID    `json:"course_id"`
	Subjects        []string        `json:"subjects"`
	FeeWaiver       decimal.Decimal `json:"fee_waiver"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	DownPayment     decimal.Decimal `json:"down_payment"`
}

type ListAdmissionsRequest struct {
	StudentID  *snowflake.ID
	Type       AdmissionType
	Pagination pagination.Pagination
}

type ListAdmissionsResponse struct {
	Admissions []Admission          `json:"admissions"`
	PageInfo   *pagination.PageInfo `json:"page_info"`
}

// AdmissionDetail is an admission with its schedule attached. For board
// admissions Installments is empty; monthly bills are served by the board
// billing service.
type AdmissionDetail struct {
	Admission    Admission     `json:"admission"`
	Installments []Installment `json:"installments,omitempty"`
}
