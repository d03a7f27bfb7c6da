package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	admissiondomain "github.com/coachdesk/coachdesk/internal/admission/domain"
	"github.com/shopspring/decimal"
)

type RecordInstallmentPaymentRequest struct {
	AdmissionID   snowflake.ID                  `json:"admission_id"`
	InstallmentNo int                           `json:"installment_no"`
	Amount        decimal.Decimal               `json:"amount"`
	Method        admissiondomain.PaymentMethod `json:"method"`
	TransactionID string                        `json:"transaction_id"`
	ChequeNo      string                        `json:"cheque_no"`
	ChequeDate    *time.Time                    `json:"cheque_date"`
	ReceivedDate  *time.Time                    `json:"received_date"`
	Remarks       string                        `json:"remarks"`
}

type RecordMonthlyBillPaymentRequest struct {
	AdmissionID   snowflake.ID                  `json:"admission_id"`
	MonthNo       int                           `json:"month_no"`
	Amount        decimal.Decimal               `json:"amount"`
	Method        admissiondomain.PaymentMethod `json:"method"`
	TransactionID string                        `json:"transaction_id"`
	ChequeNo      string                        `json:"cheque_no"`
	ChequeDate    *time.Time                    `json:"cheque_date"`
	ReceivedDate  *time.Time                    `json:"received_date"`
	Remarks       string                        `json:"remarks"`
}

type Service interface {
	// RecordInstallmentPayment settles one installment of a one-time
	// admission. Cheque and DD land in PENDING_CLEARANCE; everything
	// else is PAID immediately.
	RecordInstallmentPayment(ctx context.Context, req RecordInstallmentPaymentRequest) (*Receipt, error)

	// RecordMonthlyBillPayment settles one month of a board admission
	// and freezes the month's subjects and amount.
	RecordMonthlyBillPayment(ctx context.Context, req RecordMonthlyBillPaymentRequest) (*Receipt, error)

	// ConfirmClearance moves a PENDING_CLEARANCE payment to PAID once
	// the cheque or DD has cleared.
	ConfirmClearance(ctx context.Context, receiptID snowflake.ID) (*Receipt, error)

	// BounceCheque voids the receipt and reopens the installment or
	// month it had settled.
	BounceCheque(ctx context.Context, receiptID snowflake.ID, remarks string) (*Receipt, error)

	GetReceipt(ctx context.Context, id snowflake.ID) (*Receipt, error)
	GetReceiptByNo(ctx context.Context, receiptNo string) (*Receipt, error)
	ListReceipts(ctx context.Context, admissionID snowflake.ID) ([]Receipt, error)
}
