// Package coverage wraps a launch type's run delegate so that every launch
// records code coverage: the coverage agent is added to the VM arguments of a
// working copy, then the wrapped delegate launches it in run mode.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"covlaunch/core/launch"
	"covlaunch/core/progress"
)

// DelegateMode is the mode the wrapped delegate is always invoked in,
// whatever mode the coverage launcher itself was invoked in.
const DelegateMode = launch.ModeRun

// launchWork is the progress total of a launch: one unit for adding the agent,
// one handed to the delegate.
const launchWork = 2

// OutputAllocator hands out a unique execution data path per call.
type OutputAllocator interface {
	NewFile() (string, error)
}

// LaunchFactory creates the handle of a coverage run.
type LaunchFactory func(cfg launch.Configuration, mode launch.Mode, execFile string, scope []string) launch.Handle

// Dependencies are the collaborators of a Launcher.
type Dependencies struct {
	Preferences Preferences
	Files       OutputAllocator
	Agent       AgentLocator
	// NewLaunch defaults to coverage.NewLaunch.
	NewLaunch LaunchFactory
	// Scope defaults to launch.ConfiguredScope.
	Scope  func(launch.Configuration) []string
	Logger *slog.Logger
}

// Launcher is the coverage launch delegate for one launch type.
//
// Initialize must be called once before any other method. The resolved
// delegate is fixed afterwards; concurrent launches are safe once
// Initialize has returned.
type Launcher struct {
	deps Dependencies

	initialized bool
	initErr     error
	launchType  string
	delegate    launch.Delegate
	lifecycle   launch.LifecycleDelegate
}

func New(deps Dependencies) *Launcher {
	if deps.NewLaunch == nil {
		deps.NewLaunch = NewLaunch
	}
	if deps.Scope == nil {
		deps.Scope = launch.ConfiguredScope
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Launcher{deps: deps}
}

// Initialize resolves the run delegate of launchType. A resolution failure is
// kept and returned by every later call.
func (l *Launcher) Initialize(types launch.TypeLookup, launchType string) error {
	if l.initialized {
		return fmt.Errorf("coverage launcher already initialized for %q", l.launchType)
	}
	l.initialized = true
	l.launchType = launchType

	delegate, err := resolveDelegate(types, launchType, l)
	if err != nil {
		l.initErr = err
		return err
	}
	l.delegate = delegate
	if lc, ok := delegate.(launch.LifecycleDelegate); ok {
		l.lifecycle = lc
	}
	l.deps.Logger.Debug("coverage launcher initialized",
		"type", launchType,
		"lifecycle", l.lifecycle != nil,
	)
	return nil
}

// LaunchType returns the launch type the launcher was initialized with.
func (l *Launcher) LaunchType() string { return l.launchType }

// Delegate returns the wrapped delegate, nil until initialized.
func (l *Launcher) Delegate() launch.Delegate { return l.delegate }

func (l *Launcher) ready() error {
	if !l.initialized {
		return ErrNotInitialized
	}
	return l.initErr
}

// Launch adds the coverage agent to a working copy of cfg and launches it with
// the wrapped delegate in DelegateMode. A canceled monitor ends the launch
// before anything is changed. mon.Done is called exactly once on every path,
// including a failed or missing Initialize.
func (l *Launcher) Launch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, handle launch.Handle, mon progress.Monitor) error {
	if mon == nil {
		mon = progress.Null()
	}
	mon.BeginTask(fmt.Sprintf("Launching %s", cfg.Name()), launchWork)
	defer mon.Done()

	if err := l.ready(); err != nil {
		return err
	}
	if mon.IsCanceled() {
		return nil
	}

	wc := cfg.WorkingCopy()
	execFile, err := l.executionDataFile(handle)
	if err != nil {
		return err
	}
	if err := l.injector().Inject(wc, execFile); err != nil {
		return err
	}
	mon.Worked(1)

	l.deps.Logger.Debug("delegating coverage launch",
		"configuration", cfg.Name(),
		"mode", mode,
		"delegate_mode", DelegateMode,
		"execfile", execFile,
	)
	return l.delegate.Launch(ctx, wc.Configuration(), DelegateMode, handle, progress.Sub(mon, 1))
}

// GetLaunch creates the coverage launch handle for cfg with a freshly
// allocated execution data file.
func (l *Launcher) GetLaunch(cfg launch.Configuration, mode launch.Mode) (launch.Handle, error) {
	if err := l.ready(); err != nil {
		return nil, err
	}
	execFile, err := l.allocate()
	if err != nil {
		return nil, err
	}
	return l.deps.NewLaunch(cfg, mode, execFile, l.deps.Scope(cfg)), nil
}

func (l *Launcher) executionDataFile(handle launch.Handle) (string, error) {
	if p, ok := handle.(ExecutionDataProvider); ok && p.ExecutionDataFile() != "" {
		return p.ExecutionDataFile(), nil
	}
	return l.allocate()
}

func (l *Launcher) allocate() (string, error) {
	if l.deps.Files == nil {
		return "", errors.New("execution data allocator not configured")
	}
	return l.deps.Files.NewFile()
}

func (l *Launcher) injector() Injector {
	return Injector{
		Preferences: l.deps.Preferences,
		Agent:       l.deps.Agent,
		Logger:      l.deps.Logger,
	}
}

var _ launch.Delegate = (*Launcher)(nil)
var _ launch.LifecycleDelegate = (*Launcher)(nil)
var _ launch.LaunchFactory = (*Launcher)(nil)
