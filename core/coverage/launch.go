package coverage

import (
	"covlaunch/core/launch"
)

// ExecutionDataProvider is implemented by handles that already own an
// execution data file.
type ExecutionDataProvider interface {
	ExecutionDataFile() string
}

// Launch is one coverage-enabled run: the launch handle plus the file the
// agent records into and the entries the run analyzes.
type Launch struct {
	*launch.Launch
	execFile string
	scope    []string
}

// NewLaunch is the default LaunchFactory.
func NewLaunch(cfg launch.Configuration, mode launch.Mode, execFile string, scope []string) launch.Handle {
	return &Launch{
		Launch:   launch.NewLaunch(cfg, mode),
		execFile: execFile,
		scope:    append([]string(nil), scope...),
	}
}

func (l *Launch) ExecutionDataFile() string { return l.execFile }

func (l *Launch) Scope() []string {
	return append([]string(nil), l.scope...)
}

var _ launch.Handle = (*Launch)(nil)
var _ ExecutionDataProvider = (*Launch)(nil)
