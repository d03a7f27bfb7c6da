package domain

import "errors"

var (
	ErrInvalidBranch      = errors.New("invalid_branch")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCourse      = errors.New("invalid_course")
	ErrInvalidSubjects    = errors.New("invalid_subjects")
	ErrNotFound           = errors.New("not_found")
	ErrInstallmentMissing = errors.New("installment_not_found")
)
