package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid_id")
	ErrInvalidMonth    = errors.New("invalid_month")
	ErrInvalidSubjects = errors.New("invalid_subjects")
	ErrNotFound        = errors.New("not_found")
	ErrNotBoard        = errors.New("not_board_admission")
	ErrMonthFrozen     = errors.New("month_frozen")
)
