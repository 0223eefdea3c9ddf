package process

import (
	"io"
	"reflect"
	"sync"
)

// SyncWriter serializes writes to an underlying writer. Launched processes
// copy their output from separate goroutines, so a writer shared between
// stdout, stderr, concurrent launches or a logger must be wrapped.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewSyncWriter(w io.Writer) *SyncWriter {
	if s, ok := w.(*SyncWriter); ok {
		return s
	}
	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// SyncWriters wraps stdout and stderr. The same writer passed twice gets a
// single lock.
func SyncWriters(stdout, stderr io.Writer) (*SyncWriter, *SyncWriter) {
	out := NewSyncWriter(stdout)
	if sameWriter(stdout, stderr) {
		return out, out
	}
	return out, NewSyncWriter(stderr)
}

func sameWriter(a, b io.Writer) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}
	return a == b
}
