// Package seed bootstraps a demo catalog so a fresh development install
// has something to admit students into.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/coachdesk/coachdesk/internal/catalog/domain"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EnsureDemoCatalog creates one one-time and one board course under the
// given branch when the branch has no courses yet. It is a no-op on a
// populated database.
func EnsureDemoCatalog(db *gorm.DB, branchID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&catalogdomain.Course{}).
			Where("branch_id = ?", branchID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		if err := seedOneTimeCourse(tx, node, branchID); err != nil {
			return err
		}
		return seedBoardCourse(tx, node, branchID)
	})
}

func seedOneTimeCourse(tx *gorm.DB, node *snowflake.Node, branchID snowflake.ID) error {
	course := &catalogdomain.Course{
		ID:       node.Generate(),
		BranchID: branchID,
		Name:     "Foundation Batch",
		Slug:     slug.Make("Foundation Batch"),
		Type:     catalogdomain.CourseTypeOneTime,
		IsActive: true,
	}
	if err := tx.Create(course).Error; err != nil {
		return err
	}

	items := []catalogdomain.FeeLineItem{
		{FeesType: "TUITION", Value: decimal.NewFromInt(18000)},
		{FeesType: "MATERIAL", Value: decimal.NewFromInt(2500)},
	}
	for _, item := range items {
		item.ID = node.Generate()
		item.CourseID = course.ID
		item.IsActive = true
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedBoardCourse(tx *gorm.DB, node *snowflake.Node, branchID snowflake.ID) error {
	course := &catalogdomain.Course{
		ID:             node.Generate(),
		BranchID:       branchID,
		Name:           "Class 10 Board",
		Slug:           slug.Make("Class 10 Board"),
		Type:           catalogdomain.CourseTypeBoard,
		DurationMonths: 12,
		IsActive:       true,
	}
	if err := tx.Create(course).Error; err != nil {
		return err
	}

	subjects := []catalogdomain.Subject{
		{Name: "MATH", MonthlyPrice: decimal.NewFromInt(800)},
		{Name: "SCIENCE", MonthlyPrice: decimal.NewFromInt(700)},
		{Name: "ENGLISH", MonthlyPrice: decimal.NewFromInt(500)},
	}
	for _, subject := range subjects {
		subject.ID = node.Generate()
		subject.CourseID = course.ID
		subject.IsActive = true
		if err := tx.Create(&subject).Error; err != nil {
			return err
		}
	}
	return nil
}
