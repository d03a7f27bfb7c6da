package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall time so schedules can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock returns a UTC wall clock.
func NewSystemClock() Clock { return systemClock{} }

var Module = fx.Provide(NewSystemClock)
