package launch

import (
	"context"

	"covlaunch/core/progress"
)

// Delegate is implemented by every launcher. It starts whatever the
// configuration describes and attaches the resulting processes to the handle.
// Implementations must not retain the configuration beyond the call.
type Delegate interface {
	Launch(ctx context.Context, cfg Configuration, mode Mode, handle Handle, mon progress.Monitor) error
}

// DelegateRef is one delegate registered on a launch type.
type DelegateRef struct {
	ID       string
	Name     string
	Delegate Delegate
}

// Type is a category of launchable configuration.
type Type interface {
	ID() string
	Name() string
	// DelegatesFor returns the delegates registered for mode in registration order.
	DelegatesFor(mode Mode) []DelegateRef
}

// TypeLookup resolves launch types by identifier.
type TypeLookup interface {
	LaunchType(id string) (Type, bool)
}
