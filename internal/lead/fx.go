package lead

import (
	"github.com/coachdesk/coachdesk/internal/lead/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lead.service",
	fx.Provide(service.NewService),
)
