package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Service interface {
	CreateCourse(ctx context.Context, req CreateCourseRequest) (*Course, error)
	GetCourse(ctx context.Context, id snowflake.ID) (*Course, error)
	ListCourses(ctx context.Context, req ListCoursesRequest) ([]Course, error)
	DisableCourse(ctx context.Context, id snowflake.ID) error

	AddFeeLineItem(ctx context.Context, req AddFeeLineItemRequest) (*FeeLineItem, error)
	ListFeeLineItems(ctx context.Context, courseID snowflake.ID) ([]FeeLineItem, error)

	AddSubject(ctx context.Context, req AddSubjectRequest) (*Subject, error)
	ListSubjects(ctx context.Context, courseID snowflake.ID) ([]Subject, error)

	// BaseFees sums the active fee line items of a one-time course.
	BaseFees(ctx context.Context, courseID snowflake.ID) (decimal.Decimal, error)

	// SubjectPrices resolves current monthly prices for the named
	// subjects of a board course. Unknown names are ErrUnknownSubject.
	SubjectPrices(ctx context.Context, courseID snowflake.ID, names []string) ([]decimal.Decimal, error)
}

type CreateCourseRequest struct {
	Name           string          `json:"name"`
	Type           CourseType      `json:"type"`
	DurationMonths int             `json:"duration_months"`
	FeeLineItems   []FeeLineInput  `json:"fee_line_items"`
	Subjects       []SubjectInput  `json:"subjects"`
}

type FeeLineInput struct {
	FeesType string          `json:"fees_type"`
	Value    decimal.Decimal `json:"value"`
}

type SubjectInput struct {
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
}

type ListCoursesRequest struct {
	Type     CourseType
	IsActive *bool
}

type AddFeeLineItemRequest struct {
	CourseID snowflake.ID    `json:"course_id"`
	FeesType string          `json:"fees_type"`
	Value    decimal.Decimal `json:"value"`
}

type AddSubjectRequest struct {
	CourseID     snowflake.ID    `json:"course_id"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthly_price"`
}
