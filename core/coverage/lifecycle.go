package coverage

import (
	"context"

	"covlaunch/core/launch"
	"covlaunch/core/progress"
)

// The checks below forward to the wrapped delegate in DelegateMode when it is
// a launch.LifecycleDelegate, and return true when it is not. Results and
// errors of the delegate are returned unchanged.

// BuildForLaunch reports whether a build should precede the launch.
func (l *Launcher) BuildForLaunch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = mode
	if err := l.ready(); err != nil {
		return false, err
	}
	if l.lifecycle == nil {
		return true, nil
	}
	return l.lifecycle.BuildForLaunch(ctx, cfg, DelegateMode, mon)
}

func (l *Launcher) PreLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = mode
	if err := l.ready(); err != nil {
		return false, err
	}
	if l.lifecycle == nil {
		return true, nil
	}
	return l.lifecycle.PreLaunchCheck(ctx, cfg, DelegateMode, mon)
}

func (l *Launcher) FinalLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = mode
	if err := l.ready(); err != nil {
		return false, err
	}
	if l.lifecycle == nil {
		return true, nil
	}
	return l.lifecycle.FinalLaunchCheck(ctx, cfg, DelegateMode, mon)
}
