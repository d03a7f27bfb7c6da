package email

import (
	"github.com/coachdesk/coachdesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) (Provider, error) {
	if cfg.Email.SMTPHost == "" {
		log.Named("providers.email").Warn("smtp not configured, reminder emails are dropped")
		return &NoOpProvider{}, nil
	}
	return NewSMTP(Config{
		Host:     cfg.Email.SMTPHost,
		Port:     cfg.Email.SMTPPort,
		Username: cfg.Email.SMTPUsername,
		Password: cfg.Email.SMTPPassword,
		From:     cfg.Email.SMTPFrom,
	})
}
