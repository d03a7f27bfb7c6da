// Package domain contains persistence models for student records.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Student is an enrolled (or converting) learner at a branch.
type Student struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID snowflake.ID `gorm:"column:branch_id;not null;index" json:"branch_id"`

	FirstName string `gorm:"type:text;not null" json:"first_name"`
	LastName  string `gorm:"type:text" json:"last_name"`
	Phone     string `gorm:"type:text;not null;index" json:"phone"`
	Email     string `gorm:"type:text" json:"email"`
	Address   string `gorm:"type:text" json:"address"`

	GuardianName  string `gorm:"column:guardian_name;type:text" json:"guardian_name"`
	GuardianPhone string `gorm:"column:guardian_phone;type:text" json:"guardian_phone"`
	GuardianEmail string `gorm:"column:guardian_email;type:text" json:"guardian_email"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Student) TableName() string { return "students" }

func (s *Student) Validate() error {
	if s.FirstName == "" {
		return ErrInvalidName
	}
	if s.Phone == "" {
		return ErrInvalidPhone
	}
	return nil
}
