package domain

import "errors"

var (
	ErrInvalidBranch = errors.New("invalid_branch")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidPhone  = errors.New("invalid_phone")
	ErrInvalidID     = errors.New("invalid_id")
	ErrNotFound      = errors.New("not_found")
)
