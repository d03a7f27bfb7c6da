package domain

import "errors"

var (
	ErrNotFound            = errors.New("not_found")
	ErrInstallmentNotFound = errors.New("installment_not_found")
	ErrMonthNotFound       = errors.New("month_not_found")
	ErrAlreadyPaid         = errors.New("already_paid")
	ErrInvalidAmount       = errors.New("invalid_amount")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrChequeDetailMissing = errors.New("cheque_detail_missing")
	ErrNotInClearance      = errors.New("not_in_clearance")
	ErrPaymentInProgress   = errors.New("payment_in_progress")
)
