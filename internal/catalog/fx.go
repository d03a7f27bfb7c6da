package catalog

import (
	"github.com/coachdesk/coachdesk/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(service.NewService),
)
