package launch

import (
	"context"

	"covlaunch/core/progress"
)

// LifecycleDelegate is implemented by delegates that take part in the checks a
// host issues around Launch. A false result from any check vetoes the step.
type LifecycleDelegate interface {
	BuildForLaunch(ctx context.Context, cfg Configuration, mode Mode, mon progress.Monitor) (bool, error)
	PreLaunchCheck(ctx context.Context, cfg Configuration, mode Mode, mon progress.Monitor) (bool, error)
	FinalLaunchCheck(ctx context.Context, cfg Configuration, mode Mode, mon progress.Monitor) (bool, error)
}

// LaunchFactory allows delegates to supply their own launch handle.
type LaunchFactory interface {
	GetLaunch(cfg Configuration, mode Mode) (Handle, error)
}
