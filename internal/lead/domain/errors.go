package domain

import "errors"

var (
	ErrInvalidBranch     = errors.New("invalid_branch")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidPhone      = errors.New("invalid_phone")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyConverted  = errors.New("already_converted")
	ErrLeadClosed        = errors.New("lead_closed")
)
