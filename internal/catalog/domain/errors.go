package domain

import "errors"

var (
	ErrInvalidBranch     = errors.New("invalid_branch")
	ErrInvalidName       = errors.New("invalid_name")
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidCourseType = errors.New("invalid_course_type")
	ErrInvalidDuration   = errors.New("invalid_duration")
	ErrInvalidValue      = errors.New("invalid_value")
	ErrNotFound          = errors.New("not_found")
	ErrDuplicateSlug     = errors.New("duplicate_slug")
	ErrUnknownSubject    = errors.New("unknown_subject")
)
