package feeschedule

import "errors"

var (
	ErrInvalidInstallmentCount = errors.New("invalid_installment_count")
	ErrInvalidAmount           = errors.New("invalid_amount")
)
