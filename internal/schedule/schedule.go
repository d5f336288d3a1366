// Package schedule supplies the time source used for debounce timers.
//
// Production code uses the wall clock. Tests hand in a *clock.Mock and move
// virtual time forward with Add.
package schedule

import (
	"github.com/benbjohnson/clock"
)

// Provider supplies the clock that timers are scheduled on.
type Provider interface {
	Clock() clock.Clock
}

type provider struct {
	c clock.Clock
}

func (p provider) Clock() clock.Clock { return p.c }

// Real returns a Provider backed by the system clock.
func Real() Provider {
	return provider{c: clock.New()}
}

// Virtual returns a Provider backed by m. Timers only fire when m is advanced.
func Virtual(m *clock.Mock) Provider {
	return provider{c: m}
}
