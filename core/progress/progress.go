// Package progress carries progress reporting and cooperative cancellation
// between a launch host and the delegates it drives.
package progress

import (
	"context"
	"sync"
)

// Monitor is a unit of work with a declared total, polled for cancellation.
type Monitor interface {
	BeginTask(name string, totalWork int)
	Worked(work int)
	IsCanceled() bool
	SetCanceled(canceled bool)
	Done()
}

// Null returns a monitor that ignores progress and only records cancellation.
func Null() Monitor {
	return &nullMonitor{}
}

type nullMonitor struct {
	mu       sync.Mutex
	canceled bool
}

func (m *nullMonitor) BeginTask(string, int) {}
func (m *nullMonitor) Worked(int)            {}
func (m *nullMonitor) Done()                 {}

func (m *nullMonitor) IsCanceled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled
}

func (m *nullMonitor) SetCanceled(canceled bool) {
	m.mu.Lock()
	m.canceled = canceled
	m.mu.Unlock()
}

// Tracker records what a task reported. It is canceled when SetCanceled(true)
// is called or when its context ends. Safe for concurrent use so a host can
// observe it while a launch runs.
type Tracker struct {
	ctx context.Context

	mu        sync.Mutex
	task      string
	total     int
	worked    int
	doneCount int
	canceled  bool
}

func NewTracker(ctx context.Context) *Tracker {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Tracker{ctx: ctx}
}

func (t *Tracker) BeginTask(name string, totalWork int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.task = name
	t.total = totalWork
}

func (t *Tracker) Worked(work int) {
	if work <= 0 {
		return
	}
	t.mu.Lock()
	t.worked += work
	t.mu.Unlock()
}

func (t *Tracker) IsCanceled() bool {
	t.mu.Lock()
	canceled := t.canceled
	t.mu.Unlock()
	return canceled || t.ctx.Err() != nil
}

func (t *Tracker) SetCanceled(canceled bool) {
	t.mu.Lock()
	t.canceled = canceled
	t.mu.Unlock()
}

func (t *Tracker) Done() {
	t.mu.Lock()
	t.doneCount++
	t.mu.Unlock()
}

// Task returns the name passed to BeginTask.
func (t *Tracker) Task() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.task
}

// TotalWork returns the total passed to BeginTask.
func (t *Tracker) TotalWork() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total
}

// WorkedTotal returns the sum of all Worked calls.
func (t *Tracker) WorkedTotal() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.worked
}

// DoneCount returns how many times Done was called.
func (t *Tracker) DoneCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doneCount
}

var _ Monitor = (*nullMonitor)(nil)
var _ Monitor = (*Tracker)(nil)
