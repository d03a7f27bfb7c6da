package student

import (
	"github.com/coachdesk/coachdesk/internal/student/service"
	"go.uber.org/fx"
)

var Module = fx.Module("student.service",
	fx.Provide(service.NewService),
)
