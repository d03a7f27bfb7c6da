package migration

import (
	"github.com/bwmarrin/snowflake"
	"github.com/coachdesk/coachdesk/internal/config"
	"github.com/coachdesk/coachdesk/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else if err := AutoMigrate(conn); err != nil {
			return err
		}

		if !cfg.IsProduction() && cfg.DefaultBranchID != 0 {
			return seed.EnsureDemoCatalog(conn, snowflake.ParseInt64(cfg.DefaultBranchID))
		}
		return nil
	}),
)
