package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/coachdesk/coachdesk/internal/branchctx"
	leaddomain "github.com/coachdesk/coachdesk/internal/lead/domain"
	studentdomain "github.com/coachdesk/coachdesk/internal/student/domain"
	studentservice "github.com/coachdesk/coachdesk/internal/student/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (leaddomain.Service, context.Context) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&studentdomain.Student{},
		&leaddomain.Lead{},
		&leaddomain.FollowUpNote{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	studentSvc := studentservice.NewService(studentservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		GenID:      node,
		StudentSvc: studentSvc,
	})

	ctx := branchctx.WithBranchID(context.Background(), node.Generate())
	return svc, ctx
}

func createLead(t *testing.T, svc leaddomain.Service, ctx context.Context) *leaddomain.Lead {
	t.Helper()
	lead, err := svc.Create(ctx, leaddomain.CreateLeadRequest{
		Name:   "Priya Sharma",
		Phone:  "9876543210",
		Email:  "priya@example.com",
		Source: "walk_in",
	})
	require.NoError(t, err)
	return lead
}

func TestConvertCreatesStudentAndClosesLead(t *testing.T) {
	svc, ctx := newService(t)
	lead := createLead(t, svc, ctx)

	student, err := svc.Convert(ctx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, "Priya", student.FirstName)
	require.Equal(t, "Sharma", student.LastName)
	require.Equal(t, lead.Phone, student.Phone)

	got, err := svc.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, leaddomain.LeadStatusConverted, got.Status)
	require.NotNil(t, got.StudentID)
	require.Equal(t, student.ID, *got.StudentID)

	// Conversion is terminal.
	_, err = svc.Convert(ctx, lead.ID)
	require.ErrorIs(t, err, leaddomain.ErrAlreadyConverted)
	_, err = svc.UpdateStatus(ctx, lead.ID, leaddomain.LeadStatusContacted)
	require.ErrorIs(t, err, leaddomain.ErrAlreadyConverted)
}

func TestConvertRejectsLostLead(t *testing.T) {
	svc, ctx := newService(t)
	lead := createLead(t, svc, ctx)

	_, err := svc.UpdateStatus(ctx, lead.ID, leaddomain.LeadStatusLost)
	require.NoError(t, err)

	_, err = svc.Convert(ctx, lead.ID)
	require.ErrorIs(t, err, leaddomain.ErrLeadClosed)
}

func TestUpdateStatusCannotMarkConvertedDirectly(t *testing.T) {
	svc, ctx := newService(t)
	lead := createLead(t, svc, ctx)

	_, err := svc.UpdateStatus(ctx, lead.ID, leaddomain.LeadStatusConverted)
	require.ErrorIs(t, err, leaddomain.ErrInvalidStatus)
}

func TestFollowUpMovesLeadIntoFunnel(t *testing.T) {
	svc, ctx := newService(t)
	lead := createLead(t, svc, ctx)

	next := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	note, err := svc.AddFollowUp(ctx, lead.ID, "asked for a fee breakup", &next)
	require.NoError(t, err)
	require.NotZero(t, note.ID)

	got, err := svc.Get(ctx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, leaddomain.LeadStatusFollowUp, got.Status)
	require.NotNil(t, got.NextFollowUpAt)
	require.True(t, got.NextFollowUpAt.Equal(next))

	notes, err := svc.ListFollowUps(ctx, lead.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)

	// Closed leads take no more notes.
	_, err = svc.UpdateStatus(ctx, lead.ID, leaddomain.LeadStatusLost)
	require.NoError(t, err)
	_, err = svc.AddFollowUp(ctx, lead.ID, "ping again", nil)
	require.ErrorIs(t, err, leaddomain.ErrLeadClosed)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, ctx := newService(t)
	first := createLead(t, svc, ctx)
	second, err := svc.Create(ctx, leaddomain.CreateLeadRequest{
		Name:   "Rahul Verma",
		Phone:  "9876500000",
		Source: "website",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, second.ID, leaddomain.LeadStatusContacted)
	require.NoError(t, err)

	leads, err := svc.List(ctx, leaddomain.ListLeadsRequest{Status: leaddomain.LeadStatusNew})
	require.NoError(t, err)
	require.Len(t, leads, 1)
	require.Equal(t, first.ID, leads[0].ID)

	_, err = svc.List(ctx, leaddomain.ListLeadsRequest{Status: "BOGUS"})
	require.ErrorIs(t, err, leaddomain.ErrInvalidStatus)
}
