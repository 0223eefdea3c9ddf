package progress

import "sync"

// Sub allocates ticks of parent's work to a child task. Whatever total the
// child declares is scaled onto those ticks; Done reports any ticks the child
// did not consume. Cancellation is read from and written to the parent.
func Sub(parent Monitor, ticks int) Monitor {
	if parent == nil {
		parent = Null()
	}
	if ticks < 0 {
		ticks = 0
	}
	return &subMonitor{parent: parent, ticks: ticks}
}

type subMonitor struct {
	parent Monitor
	ticks  int

	mu       sync.Mutex
	scale    float64
	begun    bool
	worked   float64
	reported int
	done     bool
}

func (s *subMonitor) BeginTask(name string, totalWork int) {
	_ = name
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.begun {
		return
	}
	s.begun = true
	if totalWork > 0 {
		s.scale = float64(s.ticks) / float64(totalWork)
	}
}

func (s *subMonitor) Worked(work int) {
	if work <= 0 {
		return
	}
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.worked += float64(work) * s.scale
	delta := s.pending()
	s.mu.Unlock()
	if delta > 0 {
		s.parent.Worked(delta)
	}
}

func (s *subMonitor) IsCanceled() bool { return s.parent.IsCanceled() }

func (s *subMonitor) SetCanceled(canceled bool) { s.parent.SetCanceled(canceled) }

func (s *subMonitor) Done() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	delta := s.ticks - s.reported
	s.reported = s.ticks
	s.mu.Unlock()
	if delta > 0 {
		s.parent.Worked(delta)
	}
}

// pending converts accumulated scaled work into whole ticks not yet reported.
// Caller holds s.mu.
func (s *subMonitor) pending() int {
	whole := int(s.worked)
	if whole > s.ticks {
		whole = s.ticks
	}
	delta := whole - s.reported
	if delta < 0 {
		return 0
	}
	s.reported = whole
	return delta
}

var _ Monitor = (*subMonitor)(nil)
