package pdf

import (
	"context"
	"io"
)

// ReceiptLine is one row of the receipt table.
type ReceiptLine struct {
	Description string
	Amount      string
}

type ReceiptData struct {
	InstituteName    string
	InstituteAddress string

	ReceiptNo    string
	DatePaid     string
	Status       string
	Method       string
	ChequeNo     string

	StudentName  string
	GuardianName string
	CourseName   string

	Lines        []ReceiptLine
	ExcessAmount string
	Total        string
}

type Provider interface {
	GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error)
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateReceipt(ctx context.Context, data ReceiptData) (io.Reader, error) {
	return nil, nil
}
