// Package domain contains payment records and the receipt ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	"github.com/shopspring/decimal"
)

// ReceiptStatus is the lifecycle of a receipt row. Clearing instruments
// (cheque, DD) issue in PENDING_CLEARANCE and settle or void later.
type ReceiptStatus string

const (
	ReceiptStatusIssued           ReceiptStatus = "ISSUED"
	ReceiptStatusPendingClearance ReceiptStatus = "PENDING_CLEARANCE"
	ReceiptStatusVoid             ReceiptStatus = "VOID"
)

// Receipt is written once per recorded payment. Exactly one of
// InstallmentID / MonthlyBillID is set depending on what was paid.
type Receipt struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID snowflake.ID `gorm:"column:branch_id;not null;index" json:"branch_id"`

	// ReceiptNo is a ULID, sortable by issue time.
	ReceiptNo string `gorm:"column:receipt_no;type:text;not null;uniqueIndex" json:"receipt_no"`

	AdmissionID   snowflake.ID  `gorm:"column:admission_id;not null;index" json:"admission_id"`
	StudentID     snowflake.ID  `gorm:"column:student_id;not null;index" json:"student_id"`
	InstallmentID *snowflake.ID `gorm:"column:installment_id;index" json:"installment_id,omitempty"`
	MonthlyBillID *snowflake.ID `gorm:"column:monthly_bill_id;index" json:"monthly_bill_id,omitempty"`

	Amount decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"amount"`
	// ExcessAmount is the surplus over the due amount, display-only.
	ExcessAmount decimal.Decimal `gorm:"column:excess_amount;type:numeric(14,4);not null;default:0" json:"excess_amount"`

	Method        admissiondomain.PaymentMethod `gorm:"column:method;type:text;not null" json:"method"`
	TransactionID string                        `gorm:"column:transaction_id;type:text" json:"transaction_id,omitempty"`
	ChequeNo      string                        `gorm:"column:cheque_no;type:text" json:"cheque_no,omitempty"`
	ChequeDate    *time.Time                    `gorm:"column:cheque_date" json:"cheque_date,omitempty"`
	ReceivedDate  time.Time                     `gorm:"column:received_date;not null" json:"received_date"`
	Remarks       string                        `gorm:"type:text" json:"remarks,omitempty"`

	Status ReceiptStatus `gorm:"type:text;not null;index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Receipt) TableName() string { return "receipts" }
