package reminder

import "go.uber.org/fx"

var Module = fx.Module("reminder.service",
	fx.Provide(NewService),
)
