// Package domain contains persistence models for the enquiry pipeline.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// LeadStatus is the enquiry funnel state.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusContacted LeadStatus = "CONTACTED"
	LeadStatusFollowUp  LeadStatus = "FOLLOW_UP"
	LeadStatusConverted LeadStatus = "CONVERTED"
	LeadStatusLost      LeadStatus = "LOST"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusFollowUp, LeadStatusConverted, LeadStatusLost:
		return true
	}
	return false
}

// Lead is one enquiry. CONVERTED is terminal and links the created student.
type Lead struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	BranchID snowflake.ID `gorm:"column:branch_id;not null;index" json:"branch_id"`

	Name             string        `gorm:"type:text;not null" json:"name"`
	Phone            string        `gorm:"type:text;not null;index" json:"phone"`
	Email            string        `gorm:"type:text" json:"email"`
	InterestedCourse *snowflake.ID `gorm:"column:interested_course_id;index" json:"interested_course_id,omitempty"`
	Source           string        `gorm:"type:text" json:"source"`

	Status    LeadStatus    `gorm:"type:text;not null;default:'NEW';index" json:"status"`
	StudentID *snowflake.ID `gorm:"column:student_id" json:"student_id,omitempty"`

	NextFollowUpAt *time.Time `gorm:"column:next_follow_up_at" json:"next_follow_up_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) Validate() error {
	if l.Name == "" {
		return ErrInvalidName
	}
	if l.Phone == "" {
		return ErrInvalidPhone
	}
	return nil
}

// FollowUpNote is one timestamped interaction on a lead.
type FollowUpNote struct {
	ID     snowflake.ID `gorm:"primaryKey" json:"id"`
	LeadID snowflake.ID `gorm:"column:lead_id;not null;index" json:"lead_id"`

	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FollowUpNote) TableName() string { return "lead_follow_up_notes" }
