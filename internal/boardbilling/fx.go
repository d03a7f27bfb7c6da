package boardbilling

import (
	"github.com/coachdesk/coachdesk/internal/boardbilling/service"
	"go.uber.org/fx"
)

var Module = fx.Module("boardbilling.service",
	fx.Provide(service.NewService),
)
