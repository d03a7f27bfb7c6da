// Package domain contains persistence models for board monthly billing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// MonthlyBill is one calendar month of a board admission. Unlike an
// installment it is not a split of a lump sum: the amount is the
// tax-inclusive price of that month's subject set, recomputed on open for
// unpaid months and frozen once paid.
type MonthlyBill struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	AdmissionID snowflake.ID `gorm:"column:admission_id;not null;index;uniqueIndex:ux_monthly_bills_admission_month,priority:1" json:"admission_id"`

	MonthNo int       `gorm:"column:month_no;not null;uniqueIndex:ux_monthly_bills_admission_month,priority:2" json:"month_no"`
	DueDate time.Time `gorm:"column:due_date;not null;index" json:"due_date"`

	// Subjects is empty until the month is opened or edited; inheritance
	// resolves the effective set on read.
	Subjects datatypes.JSONSlice[string] `gorm:"column:subjects" json:"subjects"`
	Amount   decimal.Decimal             `gorm:"type:numeric(14,4);not null" json:"amount"`

	Status        admissiondomain.InstallmentStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	PaidAmount    decimal.Decimal                   `gorm:"column:paid_amount;type:numeric(14,4);not null;default:0" json:"paid_amount"`
	PaymentMethod admissiondomain.PaymentMethod     `gorm:"column:payment_method;type:text" json:"payment_method,omitempty"`
	TransactionID string                            `gorm:"column:transaction_id;type:text" json:"transaction_id,omitempty"`
	ChequeNo      string                            `gorm:"column:cheque_no;type:text" json:"cheque_no,omitempty"`
	ChequeDate    *time.Time                        `gorm:"column:cheque_date" json:"cheque_date,omitempty"`
	ReceivedDate  *time.Time                        `gorm:"column:received_date" json:"received_date,omitempty"`
	Remarks       string                            `gorm:"type:text" json:"remarks,omitempty"`

	// FrozenAt marks the moment the month was paid; subjects and amount
	// are immutable afterwards.
	FrozenAt       *time.Time `gorm:"column:frozen_at" json:"frozen_at,omitempty"`
	LastRemindedAt *time.Time `gorm:"column:last_reminded_at" json:"last_reminded_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (MonthlyBill) TableName() string { return "monthly_bills" }
