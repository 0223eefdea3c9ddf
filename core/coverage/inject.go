package coverage

import (
	"errors"
	"log/slog"
	"strings"

	"covlaunch/core/agent"
	"covlaunch/core/launch"
)

// Preferences supplies the agent's class filters.
type Preferences interface {
	AgentIncludes() string
	AgentExcludes() string
	AgentExclClassloader() string
}

// StaticPreferences is a fixed set of filters.
type StaticPreferences struct {
	Includes        string
	Excludes        string
	ExclClassloader string
}

func (p StaticPreferences) AgentIncludes() string        { return p.Includes }
func (p StaticPreferences) AgentExcludes() string        { return p.Excludes }
func (p StaticPreferences) AgentExclClassloader() string { return p.ExclClassloader }

// AgentLocator returns the on-disk path of the agent jar.
type AgentLocator interface {
	AgentFile() (string, error)
}

// Injector adds the coverage agent argument to a working copy.
type Injector struct {
	Preferences Preferences
	Agent       AgentLocator
	Logger      *slog.Logger
}

// Inject writes one agent argument, recording into execFile, to the VM
// arguments of wc. When the agent cannot be located wc is left unchanged and
// an *AgentResourceUnavailableError is returned.
func (in Injector) Inject(wc *launch.WorkingCopy, execFile string) error {
	prefs := in.Preferences
	if prefs == nil {
		prefs = StaticPreferences{}
	}
	opts := agent.NewOptions()
	opts.SetIncludes(prefs.AgentIncludes())
	opts.SetExcludes(prefs.AgentExcludes())
	opts.SetExclClassloader(prefs.AgentExclClassloader())
	opts.SetDestFile(execFile)

	if in.Agent == nil {
		return &AgentResourceUnavailableError{Cause: errors.New("agent locator not configured")}
	}
	jar, err := in.Agent.AgentFile()
	if err != nil {
		return &AgentResourceUnavailableError{Cause: err}
	}
	arg := opts.VMArgument(jar)
	AddVMArgument(wc, arg)
	if in.Logger != nil {
		in.Logger.Debug("coverage agent added", "configuration", wc.Name(), "argument", arg)
	}
	return nil
}

// AddVMArgument appends arg to the VM arguments of wc, separated by one space
// from existing text. An argument containing a space is wrapped in double
// quotes; embedded quotes are not escaped.
func AddVMArgument(wc *launch.WorkingCopy, arg string) {
	var sb strings.Builder
	sb.WriteString(wc.Attribute(launch.AttrVMArguments, ""))
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	if strings.IndexByte(arg, ' ') == -1 {
		sb.WriteString(arg)
	} else {
		sb.WriteByte('"')
		sb.WriteString(arg)
		sb.WriteByte('"')
	}
	wc.SetAttribute(launch.AttrVMArguments, sb.String())
}
