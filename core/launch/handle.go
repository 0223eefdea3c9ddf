package launch

import "sync"

// Process is a process started by a delegate.
type Process interface {
	PID() int
	// Wait blocks until the process exits and returns its exit code.
	Wait() (int, error)
	Kill() error
}

// Handle identifies one launch of a configuration.
type Handle interface {
	Configuration() Configuration
	Mode() Mode
	AddProcess(p Process)
	Processes() []Process
}

// Launch is the default Handle.
type Launch struct {
	cfg  Configuration
	mode Mode

	mu    sync.Mutex
	procs []Process
}

func NewLaunch(cfg Configuration, mode Mode) *Launch {
	return &Launch{cfg: cfg, mode: mode}
}

func (l *Launch) Configuration() Configuration { return l.cfg }
func (l *Launch) Mode() Mode                   { return l.mode }

func (l *Launch) AddProcess(p Process) {
	if p == nil {
		return
	}
	l.mu.Lock()
	l.procs = append(l.procs, p)
	l.mu.Unlock()
}

func (l *Launch) Processes() []Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Process, len(l.procs))
	copy(out, l.procs)
	return out
}

// Wait waits for every attached process and returns the first non-zero exit
// code, or the first error.
func (l *Launch) Wait() (int, error) {
	exitCode := 0
	var firstErr error
	for _, p := range l.Processes() {
		code, err := p.Wait()
		if err != nil && firstErr == nil {
			firstErr = err
		}
		if code != 0 && exitCode == 0 {
			exitCode = code
		}
	}
	return exitCode, firstErr
}

// Terminate kills every attached process.
func (l *Launch) Terminate() error {
	var firstErr error
	for _, p := range l.Processes() {
		if err := p.Kill(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ Handle = (*Launch)(nil)
