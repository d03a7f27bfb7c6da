package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/coachdesk/coachdesk/internal/admission"
	"github.com/coachdesk/coachdesk/internal/boardbilling"
	"github.com/coachdesk/coachdesk/internal/catalog"
	"github.com/coachdesk/coachdesk/internal/clock"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/lead"
	"github.com/coachdesk/coachdesk/internal/migration"
	"github.com/coachdesk/coachdesk/internal/observability"
	"github.com/coachdesk/coachdesk/internal/payment"
	"github.com/coachdesk/coachdesk/internal/providers"
	"github.com/coachdesk/coachdesk/internal/reminder"
	"github.com/coachdesk/coachdesk/internal/scheduler"
	"github.com/coachdesk/coachdesk/internal/server"
	"github.com/coachdesk/coachdesk/internal/student"
	"github.com/coachdesk/coachdesk/pkg/db"
	"github.com/coachdesk/coachdesk/pkg/log"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain services
		catalog.Module,
		student.Module,
		lead.Module,
		admission.Module,
		boardbilling.Module,
		payment.Module,

		// Outbound providers and background work
		providers.Module,
		reminder.Module,
		scheduler.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
