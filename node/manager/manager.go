package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"covlaunch/core/coverage"
	"covlaunch/core/launch"
	"covlaunch/core/progress"
	"covlaunch/node/config"
	"covlaunch/node/metrics"
	"covlaunch/node/pool"
	"covlaunch/node/registry"
)

var (
	// ErrLaunchVetoed is returned when a pre-launch or final-launch check
	// answers false.
	ErrLaunchVetoed = errors.New("launch vetoed by lifecycle check")
	// ErrNoDelegate is returned when a launch type has no delegate for the
	// requested mode.
	ErrNoDelegate = errors.New("no delegate for mode")
)

// Check names used in logs and metrics.
const (
	CheckBuild = "build"
	CheckPre   = "pre_launch"
	CheckFinal = "final_launch"
)

// Result captures one finished launch.
type Result struct {
	Configuration string
	LaunchType    string
	Mode          launch.Mode
	Delegate      string
	Handle        launch.Handle
	ExitCode      int
	StartedAt     time.Time
	CompletedAt   time.Time
	Err           error
}

// ExecutionDataFile returns the coverage output of the launch, if any.
func (r Result) ExecutionDataFile() string {
	if p, ok := r.Handle.(coverage.ExecutionDataProvider); ok {
		return p.ExecutionDataFile()
	}
	return ""
}

// Manager looks up delegates in the registry and drives them through the
// launch lifecycle.
type Manager struct {
	Config   config.Config
	Registry *registry.Registry
	Pool     *pool.Pool
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

func New(cfg config.Config, reg *registry.Registry) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, fmt.Errorf("registry required")
	}
	return &Manager{
		Config:   cfg,
		Registry: reg,
		Pool:     pool.New(cfg.Launch.Concurrency),
		Metrics:  metrics.New(),
		Logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// Delegate returns the first delegate registered for the configuration's
// launch type and mode.
func (m *Manager) Delegate(typeID string, mode launch.Mode) (launch.DelegateRef, error) {
	lt, err := m.Registry.Get(typeID)
	if err != nil {
		return launch.DelegateRef{}, err
	}
	for _, ref := range lt.DelegatesFor(mode) {
		if ref.Delegate != nil {
			return ref, nil
		}
	}
	return launch.DelegateRef{}, fmt.Errorf("launch type %q: %w %q", typeID, ErrNoDelegate, mode)
}

// Launch starts cfg in mode and returns its handle without waiting for the
// launched processes. The delegate is asked for the handle when it is a
// launch.LaunchFactory, and its lifecycle checks run before the launch when
// it is a launch.LifecycleDelegate.
func (m *Manager) Launch(ctx context.Context, cfg launch.Configuration, mode launch.Mode) (launch.Handle, error) {
	res := m.launch(ctx, cfg, mode)
	return res.Handle, res.Err
}

// Run launches cfg and waits for every launched process. Cancelling ctx
// terminates the processes.
func (m *Manager) Run(ctx context.Context, cfg launch.Configuration, mode launch.Mode) (Result, error) {
	res := m.launch(ctx, cfg, mode)
	if res.Err == nil {
		res.ExitCode, res.Err = wait(ctx, res.Handle)
		res.CompletedAt = time.Now().UTC()
	}
	if res.Err != nil {
		m.Logger.Error("launch failed", "configuration", cfg.Name(), "mode", mode, "error", res.Err)
	} else {
		m.Logger.Info("launch finished",
			"configuration", cfg.Name(),
			"mode", mode,
			"exit_code", res.ExitCode,
			"duration", res.CompletedAt.Sub(res.StartedAt),
		)
	}
	return res, res.Err
}

// Go runs cfg on the pool. The channel yields exactly one result.
func (m *Manager) Go(ctx context.Context, cfg launch.Configuration, mode launch.Mode) <-chan Result {
	out := make(chan Result, 1)
	var res Result
	errCh := m.Pool.Go(ctx, func(ctx context.Context) error {
		var err error
		res, err = m.Run(ctx, cfg, mode)
		return err
	})
	go func() {
		if err := <-errCh; err != nil && res.Err == nil {
			res = Result{Configuration: cfg.Name(), LaunchType: cfg.TypeID(), Mode: mode, Err: err}
		}
		out <- res
		close(out)
	}()
	return out
}

// Wait blocks until every launch started with Go has finished.
func (m *Manager) Wait() { m.Pool.Wait() }

func (m *Manager) launch(ctx context.Context, cfg launch.Configuration, mode launch.Mode) Result {
	res := Result{
		Configuration: cfg.Name(),
		LaunchType:    cfg.TypeID(),
		Mode:          mode,
		StartedAt:     time.Now().UTC(),
	}
	ref, err := m.Delegate(cfg.TypeID(), mode)
	if err != nil {
		res.Err = err
		return res
	}
	res.Delegate = ref.ID

	m.Metrics.LaunchStarted()
	outcome := metrics.OutcomeFailed
	defer func() {
		m.Metrics.LaunchFinished(cfg.TypeID(), string(mode), outcome, time.Since(res.StartedAt))
	}()

	log := m.Logger.With("configuration", cfg.Name(), "type", cfg.TypeID(), "mode", mode, "delegate", ref.ID)
	mon := progress.NewTracker(ctx)

	handle, err := m.handle(ref.Delegate, cfg, mode)
	if err != nil {
		res.Err = fmt.Errorf("create launch: %w", err)
		return res
	}
	res.Handle = handle

	if lc, ok := ref.Delegate.(launch.LifecycleDelegate); ok {
		if err := m.checks(ctx, lc, cfg, mode, mon, log); err != nil {
			if errors.Is(err, ErrLaunchVetoed) {
				outcome = metrics.OutcomeVetoed
			}
			res.Err = err
			return res
		}
	}

	log.Info("launching")
	if err := ref.Delegate.Launch(ctx, cfg, mode, handle, mon); err != nil {
		if errors.Is(err, coverage.ErrAgentUnavailable) {
			m.Metrics.AgentUnavailable(cfg.TypeID())
		}
		res.Err = err
		return res
	}
	if mon.IsCanceled() {
		outcome = metrics.OutcomeCanceled
		res.Err = context.Canceled
		if ctxErr := ctx.Err(); ctxErr != nil {
			res.Err = ctxErr
		}
		return res
	}
	outcome = metrics.OutcomeSuccess
	if p, ok := handle.(coverage.ExecutionDataProvider); ok {
		log.Info("recording coverage", "execfile", p.ExecutionDataFile())
	}
	return res
}

func (m *Manager) handle(d launch.Delegate, cfg launch.Configuration, mode launch.Mode) (launch.Handle, error) {
	if f, ok := d.(launch.LaunchFactory); ok {
		h, err := f.GetLaunch(cfg, mode)
		if err != nil {
			return nil, err
		}
		if h != nil {
			return h, nil
		}
	}
	return launch.NewLaunch(cfg, mode), nil
}

func (m *Manager) checks(ctx context.Context, lc launch.LifecycleDelegate, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor, log *slog.Logger) error {
	build, err := lc.BuildForLaunch(ctx, cfg, mode, mon)
	m.Metrics.Check(CheckBuild, build, err)
	if err != nil {
		return fmt.Errorf("%s check: %w", CheckBuild, err)
	}
	if build {
		log.Debug("build requested before launch")
	}

	ok, err := lc.PreLaunchCheck(ctx, cfg, mode, mon)
	m.Metrics.Check(CheckPre, ok, err)
	if err != nil {
		return fmt.Errorf("%s check: %w", CheckPre, err)
	}
	if !ok {
		return fmt.Errorf("%s check: %w", CheckPre, ErrLaunchVetoed)
	}

	ok, err = lc.FinalLaunchCheck(ctx, cfg, mode, mon)
	m.Metrics.Check(CheckFinal, ok, err)
	if err != nil {
		return fmt.Errorf("%s check: %w", CheckFinal, err)
	}
	if !ok {
		return fmt.Errorf("%s check: %w", CheckFinal, ErrLaunchVetoed)
	}
	return nil
}

type waiter interface {
	Wait() (int, error)
}

type terminator interface {
	Terminate() error
}

func wait(ctx context.Context, h launch.Handle) (int, error) {
	w, ok := h.(waiter)
	if !ok {
		return 0, nil
	}
	type waitResult struct {
		code int
		err  error
	}
	done := make(chan waitResult, 1)
	go func() {
		code, err := w.Wait()
		done <- waitResult{code, err}
	}()
	select {
	case r := <-done:
		return r.code, r.err
	case <-ctx.Done():
		if t, ok := h.(terminator); ok {
			_ = t.Terminate()
		}
		r := <-done
		if r.err == nil {
			r.err = ctx.Err()
		}
		return r.code, r.err
	}
}
