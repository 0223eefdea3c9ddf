// Package process is the run delegate for Java applications: it builds a JVM
// command line from a launch configuration and starts it as a child process.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"syscall"

	"covlaunch/core/launch"
	"covlaunch/core/progress"
)

// TypeID is the launch type the delegate is registered for.
const TypeID = "java.application"

// DefaultJavaCommand is used when a configuration names no java command.
const DefaultJavaCommand = "java"

// Options configure a Delegate. Stdout and Stderr receive the output of every
// launched process; New wraps them in SyncWriters.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Delegate starts Java applications in run mode.
type Delegate struct {
	opts Options
}

func New(opts Options) *Delegate {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	opts.Stdout, opts.Stderr = SyncWriters(opts.Stdout, opts.Stderr)
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Delegate{opts: opts}
}

func (d *Delegate) Name() string { return "process" }

// Command builds the command for cfg:
//
//	<java> <vm arguments> [-cp <classpath>] <main type> <program arguments>
//
// Argument attributes use the launch.ParseArguments grammar.
func (d *Delegate) Command(cfg launch.Configuration) (*exec.Cmd, error) {
	mainType := cfg.Attribute(launch.AttrMainType, "")
	if mainType == "" {
		return nil, fmt.Errorf("configuration %q: main type not set", cfg.Name())
	}
	args := launch.ParseArguments(cfg.Attribute(launch.AttrVMArguments, ""))
	if cp := cfg.ListAttribute(launch.AttrClasspath); len(cp) > 0 {
		args = append(args, "-cp", strings.Join(cp, string(os.PathListSeparator)))
	}
	args = append(args, mainType)
	args = append(args, launch.ParseArguments(cfg.Attribute(launch.AttrProgramArguments, ""))...)

	cmd := exec.Command(cfg.Attribute(launch.AttrJavaCommand, DefaultJavaCommand), args...)
	cmd.Dir = cfg.Attribute(launch.AttrWorkingDirectory, "")
	if env := environment(cfg); len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd, nil
}

// Launch starts the application and attaches its process to handle. It does
// not wait for the process to exit.
func (d *Delegate) Launch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, handle launch.Handle, mon progress.Monitor) error {
	if mode != launch.ModeRun {
		return fmt.Errorf("%s delegate does not support mode %q", d.Name(), mode)
	}
	if mon == nil {
		mon = progress.Null()
	}
	mon.BeginTask("Starting "+cfg.Name(), 1)
	defer mon.Done()

	if err := ctx.Err(); err != nil {
		return err
	}
	cmd, err := d.Command(cfg)
	if err != nil {
		return err
	}
	p := &Process{cmd: cmd}
	cmd.Stdout = io.MultiWriter(d.opts.Stdout, &p.stdout)
	cmd.Stderr = io.MultiWriter(d.opts.Stderr, &p.stderr)
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	d.opts.Logger.Debug("process started",
		"configuration", cfg.Name(),
		"pid", cmd.Process.Pid,
		"args", cmd.Args,
	)
	if handle != nil {
		handle.AddProcess(p)
	}
	mon.Worked(1)
	return nil
}

// BuildForLaunch answers false: classes are expected to be compiled already.
func (d *Delegate) BuildForLaunch(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	return false, nil
}

// PreLaunchCheck verifies the main type is set and the java command exists.
func (d *Delegate) PreLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if cfg.Attribute(launch.AttrMainType, "") == "" {
		return false, fmt.Errorf("configuration %q: main type not set", cfg.Name())
	}
	java := cfg.Attribute(launch.AttrJavaCommand, DefaultJavaCommand)
	if _, err := exec.LookPath(java); err != nil {
		return false, fmt.Errorf("configuration %q: %w", cfg.Name(), err)
	}
	if dir := cfg.Attribute(launch.AttrWorkingDirectory, ""); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return false, fmt.Errorf("configuration %q: working directory: %w", cfg.Name(), err)
		}
		if !info.IsDir() {
			return false, fmt.Errorf("configuration %q: working directory %s is not a directory", cfg.Name(), dir)
		}
	}
	return true, nil
}

func (d *Delegate) FinalLaunchCheck(ctx context.Context, cfg launch.Configuration, mode launch.Mode, mon progress.Monitor) (bool, error) {
	return true, nil
}

// Process is a started application.
type Process struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer

	once     sync.Once
	exitCode int
	waitErr  error
}

func (p *Process) PID() int { return p.cmd.Process.Pid }

// Wait waits for the process once; later calls return the same result. A
// non-zero exit is reported through the exit code only.
func (p *Process) Wait() (int, error) {
	p.once.Do(func() {
		err := p.cmd.Wait()
		if err == nil {
			return
		}
		p.exitCode = exitCodeForError(err)
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			p.waitErr = err
		}
	})
	return p.exitCode, p.waitErr
}

// Kill kills the process and everything it started.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := killProcessGroup(p.cmd.Process); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Stdout returns the captured standard output. Call it after Wait.
func (p *Process) Stdout() []byte { return p.stdout.Bytes() }

// Stderr returns the captured standard error. Call it after Wait.
func (p *Process) Stderr() []byte { return p.stderr.Bytes() }

func environment(cfg launch.Configuration) []string {
	var env []string
	switch m := cfg.Attributes()[launch.AttrEnvironment].(type) {
	case map[string]string:
		for k, v := range m {
			env = append(env, k+"="+v)
		}
	case map[string]any:
		for k, v := range m {
			env = append(env, fmt.Sprintf("%s=%v", k, v))
		}
	default:
		return cfg.ListAttribute(launch.AttrEnvironment)
	}
	sort.Strings(env)
	return env
}

func exitCodeForError(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			return exitCodeFromStatus(status)
		}
		return exitErr.ExitCode()
	}
	return 1
}

func exitCodeFromStatus(status syscall.WaitStatus) int {
	if status.Exited() {
		return status.ExitStatus()
	}
	if status.Signaled() {
		return 128 + int(status.Signal())
	}
	return 1
}

var _ launch.Delegate = (*Delegate)(nil)
var _ launch.LifecycleDelegate = (*Delegate)(nil)
var _ launch.Process = (*Process)(nil)
