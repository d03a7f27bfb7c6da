// Package domain contains persistence models for admissions and their
// installment schedules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AdmissionType distinguishes lump-sum admissions from monthly board ones.
type AdmissionType string

const (
	AdmissionTypeOneTime AdmissionType = "ONE_TIME"
	AdmissionTypeBoard   AdmissionType = "BOARD"
)

// InstallmentStatus is the payment lifecycle of a scheduled amount. It is
// shared with board monthly bills, which follow the same transitions.
type InstallmentStatus string

const (
	InstallmentStatusPending          InstallmentStatus = "PENDING"
	InstallmentStatusPaid             InstallmentStatus = "PAID"
	InstallmentStatusPendingClearance InstallmentStatus = "PENDING_CLEARANCE"
	InstallmentStatusOverdue          InstallmentStatus = "OVERDUE"
)

// PaymentMethod is how an installment was settled.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodUPI          PaymentMethod = "UPI"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodDemandDraft  PaymentMethod = "DD"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodUPI, PaymentMethodCard,
		PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodDemandDraft:
		return true
	}
	return false
}

// IsClearing reports whether the method settles asynchronously; such
// payments land in PENDING_CLEARANCE until the instrument clears.
func (m PaymentMethod) IsClearing() bool {
	return m == PaymentMethodCheque || m == PaymentMethodDemandDraft
}

// Admission snapshots the full fee computation at admission time, so later
// catalog edits never rewrite an agreed schedule.
type Admission struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID  snowflake.ID `gorm:"column:branch_id;not null;index" json:"branch_id"`
	StudentID snowflake.ID `gorm:"column:student_id;not null;index" json:"student_id"`
	CourseID  snowflake.ID `gorm:"column:course_id;not null;index" json:"course_id"`

	Type AdmissionType `gorm:"type:text;not null" json:"type"`

	BaseFees        decimal.Decimal `gorm:"column:base_fees;type:numeric(12,2);not null" json:"base_fees"`
	FeeWaiver       decimal.Decimal `gorm:"column:fee_waiver;type:numeric(12,2);not null" json:"fee_waiver"`
	PreviousBalance decimal.Decimal `gorm:"column:previous_balance;type:numeric(12,2);not null" json:"previous_balance"`
	DownPayment     decimal.Decimal `gorm:"column:down_payment;type:numeric(12,2);not null" json:"down_payment"`
	TaxRatePercent  decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(6,3);not null" json:"tax_rate_percent"`

	TaxableAmount   decimal.Decimal `gorm:"column:taxable_amount;type:numeric(14,4);not null" json:"taxable_amount"`
	CGSTAmount      decimal.Decimal `gorm:"column:cgst_amount;type:numeric(14,4);not null" json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `gorm:"column:sgst_amount;type:numeric(14,4);not null" json:"sgst_amount"`
	TotalFees       decimal.Decimal `gorm:"column:total_fees;type:numeric(14,4);not null" json:"total_fees"`
	RemainingAmount decimal.Decimal `gorm:"column:remaining_amount;type:numeric(14,4);not null" json:"remaining_amount"`
	ExcessAmount    decimal.Decimal `gorm:"column:excess_amount;type:numeric(14,4);not null" json:"excess_amount"`

	NumberOfInstallments int `gorm:"column:number_of_installments;not null;default:0" json:"number_of_installments"`
	DurationMonths       int `gorm:"column:duration_months;not null;default:0" json:"duration_months"`

	// DefaultSubjects is the board admission's original subject list,
	// the final fallback for monthly subject inheritance.
	DefaultSubjects datatypes.JSONSlice[string] `gorm:"column:default_subjects" json:"default_subjects,omitempty"`

	AdmittedAt time.Time `gorm:"column:admitted_at;not null" json:"admitted_at"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Admission) TableName() string { return "admissions" }

// Installment is one scheduled payment of a one-time admission. Numbers are
// permanent identifiers: they are never renumbered, even when paid out of
// order.
type Installment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	AdmissionID snowflake.ID `gorm:"column:admission_id;not null;index;uniqueIndex:ux_installments_admission_number,priority:1" json:"admission_id"`

	Number  int             `gorm:"not null;uniqueIndex:ux_installments_admission_number,priority:2" json:"number"`
	DueDate time.Time       `gorm:"column:due_date;not null;index" json:"due_date"`
	Amount  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"amount"`

	Status        InstallmentStatus `gorm:"type:text;not null;default:'PENDING';index" json:"status"`
	PaidAmount    decimal.Decimal   `gorm:"column:paid_amount;type:numeric(14,4);not null;default:0" json:"paid_amount"`
	PaymentMethod PaymentMethod     `gorm:"column:payment_method;type:text" json:"payment_method,omitempty"`
	TransactionID string            `gorm:"column:transaction_id;type:text" json:"transaction_id,omitempty"`
	ChequeNo      string            `gorm:"column:cheque_no;type:text" json:"cheque_no,omitempty"`
	ChequeDate    *time.Time        `gorm:"column:cheque_date" json:"cheque_date,omitempty"`
	ReceivedDate  *time.Time        `gorm:"column:received_date" json:"received_date,omitempty"`
	Remarks       string            `gorm:"type:text" json:"remarks,omitempty"`

	LastRemindedAt *time.Time `gorm:"column:last_reminded_at" json:"last_reminded_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Installment) TableName() string { return "installments" }
