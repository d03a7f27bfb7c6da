package providers

import (
	"github.com/coachdesk/coachdesk/internal/providers/email"
	"github.com/coachdesk/coachdesk/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	pdf.Module,
)
