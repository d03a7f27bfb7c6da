package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// ListMonths returns the bill rows as stored, without resolving
	// inheritance. Paid months show their frozen state.
	ListMonths(ctx context.Context, admissionID snowflake.ID) ([]MonthlyBill, error)

	// OpenMonth resolves the month for editing: unpaid months get their
	// effective subject set (own, inherited from the nearest prior
	// non-empty month, or the admission default) and a freshly priced
	// amount. Paid months are returned as frozen.
	OpenMonth(ctx context.Context, admissionID snowflake.ID, monthNo int) (*MonthlyBill, error)

	// SelectSubjects rewrites an unpaid month's subject set and reprices
	// it from current catalog prices.
	SelectSubjects(ctx context.Context, admissionID snowflake.ID, monthNo int, subjects []string) (*MonthlyBill, error)

	// MarkOverdue flips PENDING bills whose due date has passed to
	// OVERDUE and returns how many rows changed.
	MarkOverdue(ctx context.Context, asOf time.Time) (int, error)
}
