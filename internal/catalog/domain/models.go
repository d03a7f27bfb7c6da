// Package domain contains persistence models for the course catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CourseType distinguishes one-time courses from monthly board courses.
type CourseType string

const (
	// CourseTypeOneTime is billed as a lump sum split into installments.
	CourseTypeOneTime CourseType = "ONE_TIME"
	// CourseTypeBoard is billed monthly per selected subject.
	CourseTypeBoard CourseType = "BOARD"
)

// Course is a sellable program at a branch.
type Course struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID snowflake.ID `gorm:"column:branch_id;not null;uniqueIndex:ux_courses_branch_slug,priority:1" json:"branch_id"`

	Name string     `gorm:"type:text;not null" json:"name"`
	Slug string     `gorm:"type:text;not null;uniqueIndex:ux_courses_branch_slug,priority:2" json:"slug"`
	Type CourseType `gorm:"type:text;not null" json:"type"`

	// DurationMonths is the schedule length for board courses and the
	// default course duration otherwise.
	DurationMonths int `gorm:"not null;default:0" json:"duration_months"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Course) TableName() string { return "courses" }

func (c *Course) Validate() error {
	if c.Name == "" {
		return ErrInvalidName
	}
	if c.Type != CourseTypeOneTime && c.Type != CourseTypeBoard {
		return ErrInvalidCourseType
	}
	if c.Type == CourseTypeBoard && c.DurationMonths < 1 {
		return ErrInvalidDuration
	}
	return nil
}

// FeeLineItem is one named component of a one-time course's base price.
// Rows are insert-only; admissions snapshot the summed value, so editing a
// line item never rewrites an existing schedule.
type FeeLineItem struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CourseID snowflake.ID `gorm:"column:course_id;not null;index" json:"course_id"`

	FeesType string          `gorm:"column:fees_type;type:text;not null" json:"fees_type"`
	Value    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FeeLineItem) TableName() string { return "fee_line_items" }

func (f *FeeLineItem) Validate() error {
	if f.FeesType == "" {
		return ErrInvalidName
	}
	if f.Value.IsNegative() {
		return ErrInvalidValue
	}
	return nil
}

// Subject is a monthly-priced unit of a board course.
type Subject struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	CourseID snowflake.ID `gorm:"column:course_id;not null;index;uniqueIndex:ux_subjects_course_name,priority:1" json:"course_id"`

	Name         string          `gorm:"type:text;not null;uniqueIndex:ux_subjects_course_name,priority:2" json:"name"`
	MonthlyPrice decimal.Decimal `gorm:"column:monthly_price;type:numeric(12,2);not null" json:"monthly_price"`

	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Subject) TableName() string { return "subjects" }

func (s *Subject) Validate() error {
	if s.Name == "" {
		return ErrInvalidName
	}
	if s.MonthlyPrice.IsNegative() {
		return ErrInvalidValue
	}
	return nil
}
