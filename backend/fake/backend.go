package fake

import (
	"context"
	"sync"

	"covlaunch/core/launch"
	"covlaunch/core/progress"
)

// Call records one invocation of a fake delegate.
type Call struct {
	Method string
	Config launch.Configuration
	Mode   launch.Mode
	Handle launch.Handle
}

// Delegate is a configurable fake launcher useful for contract tests. It
// implements only launch.Delegate.
type Delegate struct {
	ExitCode  int
	LaunchErr error

	mu    sync.Mutex
	calls []Call
}

func New(exitCode int) *Delegate {
	return &Delegate{ExitCode: exitCode}
}

func (d *Delegate) Launch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, handle launch.Handle, mon progress.Monitor) error {
	d.record(Call{Method: "Launch", Config: cfg, Mode: mode, Handle: handle})
	if mon != nil {
		mon.BeginTask("fake launch", 1)
		defer mon.Done()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.LaunchErr != nil {
		return d.LaunchErr
	}
	if handle != nil {
		handle.AddProcess(&Process{ExitCode: d.ExitCode})
	}
	if mon != nil {
		mon.Worked(1)
	}
	return nil
}

// Calls returns the recorded invocations.
func (d *Delegate) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// LaunchCalls returns the recorded Launch invocations.
func (d *Delegate) LaunchCalls() []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Method == "Launch" {
			out = append(out, c)
		}
	}
	return out
}

func (d *Delegate) record(c Call) {
	d.mu.Lock()
	d.calls = append(d.calls, c)
	d.mu.Unlock()
}

// LifecycleDelegate is a fake launcher that also answers the lifecycle checks.
type LifecycleDelegate struct {
	Delegate

	Build    bool
	Pre      bool
	Final    bool
	BuildErr error
	PreErr   error
	FinalErr error
}

// NewLifecycle returns a lifecycle fake whose checks all pass.
func NewLifecycle(exitCode int) *LifecycleDelegate {
	return &LifecycleDelegate{
		Delegate: Delegate{ExitCode: exitCode},
		Build:    true,
		Pre:      true,
		Final:    true,
	}
}

func (d *LifecycleDelegate) BuildForLaunch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = ctx
	_ = mon
	d.record(Call{Method: "BuildForLaunch", Config: cfg, Mode: mode})
	return d.Build, d.BuildErr
}

func (d *LifecycleDelegate) PreLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = ctx
	_ = mon
	d.record(Call{Method: "PreLaunchCheck", Config: cfg, Mode: mode})
	return d.Pre, d.PreErr
}

func (d *LifecycleDelegate) FinalLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	_ = ctx
	_ = mon
	d.record(Call{Method: "FinalLaunchCheck", Config: cfg, Mode: mode})
	return d.Final, d.FinalErr
}

// Process is an already exited process.
type Process struct {
	ExitCode int
	WaitErr  error
	Killed   bool
}

func (p *Process) PID() int { return 4242 }

func (p *Process) Wait() (int, error) { return p.ExitCode, p.WaitErr }

func (p *Process) Kill() error {
	p.Killed = true
	return nil
}

var _ launch.Delegate = (*Delegate)(nil)
var _ launch.LifecycleDelegate = (*LifecycleDelegate)(nil)
var _ launch.Process = (*Process)(nil)
