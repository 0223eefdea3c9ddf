// Package execdata allocates and manages the files coverage agents write
// execution data into.
package execdata

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Extension is the suffix of every allocated file.
const Extension = ".exec"

// Files hands out unique execution data paths inside Dir.
type Files struct {
	Fs  afero.Fs
	Dir string

	mu      sync.Mutex
	created bool
}

func New(dir string) *Files {
	return &Files{Fs: afero.NewOsFs(), Dir: dir}
}

// NewFile returns a fresh path. The file itself is created by the agent.
func (f *Files) NewFile() (string, error) {
	if err := f.ensureDir(); err != nil {
		return "", err
	}
	dir := f.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return filepath.Join(dir, uuid.NewString()+Extension), nil
}

// List returns the execution data files in Dir, sorted by name.
func (f *Files) List() ([]string, error) {
	entries, err := afero.ReadDir(f.Fs, f.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list execution data: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Extension) {
			continue
		}
		out = append(out, filepath.Join(f.Dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Clean removes every execution data file and returns how many were removed.
func (f *Files) Clean() (int, error) {
	files, err := f.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, path := range files {
		if err := f.Fs.Remove(path); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

func (f *Files) ensureDir() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.created {
		return nil
	}
	if f.Dir == "" {
		return fmt.Errorf("execution data directory not configured")
	}
	if err := f.Fs.MkdirAll(f.Dir, 0755); err != nil {
		return fmt.Errorf("create execution data dir: %w", err)
	}
	f.created = true
	return nil
}
