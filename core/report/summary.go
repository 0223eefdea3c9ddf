// Package report writes the JSON summary of a finished launch.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"

	"covlaunch/core/version"
)

// Summary describes one launch and the coverage data it produced.
type Summary struct {
	Version       string         `json:"version"`
	Configuration string         `json:"configuration"`
	LaunchType    string         `json:"launch_type"`
	Mode          string         `json:"mode"`
	Delegate      string         `json:"delegate,omitempty"`
	StartTime     string         `json:"start_time,omitempty"`
	EndTime       string         `json:"end_time,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	ExitCode      int            `json:"exit_code"`
	Error         string         `json:"error,omitempty"`
	Coverage      *CoverageInfo  `json:"coverage,omitempty"`
	Processes     []ProcessEntry `json:"processes"`
}

// CoverageInfo describes the execution data file of a coverage launch.
type CoverageInfo struct {
	ExecutionDataFile string   `json:"execution_data_file"`
	Exists            bool     `json:"exists"`
	Bytes             int64    `json:"bytes"`
	Scope             []string `json:"scope,omitempty"`
}

type ProcessEntry struct {
	PID int `json:"pid"`
}

// New starts a summary for a launch.
func New(configuration, launchType, mode string) *Summary {
	return &Summary{
		Version:       version.SummaryVersion,
		Configuration: configuration,
		LaunchType:    launchType,
		Mode:          mode,
		Processes:     []ProcessEntry{},
	}
}

// SetTiming records the launch window.
func (s *Summary) SetTiming(start, end time.Time) {
	if !start.IsZero() {
		s.StartTime = start.UTC().Format(time.RFC3339Nano)
	}
	if !end.IsZero() {
		s.EndTime = end.UTC().Format(time.RFC3339Nano)
	}
	if !start.IsZero() && !end.IsZero() {
		s.DurationMs = end.Sub(start).Milliseconds()
	}
}

// SetError records err, if any.
func (s *Summary) SetError(err error) {
	if err != nil {
		s.Error = err.Error()
	}
}

func (s *Summary) AddProcess(pid int) {
	s.Processes = append(s.Processes, ProcessEntry{PID: pid})
}

// SetCoverage records the execution data file and, when it was written,
// its size.
func (s *Summary) SetCoverage(fs afero.Fs, execFile string, scope []string) {
	info := &CoverageInfo{ExecutionDataFile: execFile, Scope: append([]string(nil), scope...)}
	if st, err := fs.Stat(execFile); err == nil && !st.IsDir() {
		info.Exists = true
		info.Bytes = st.Size()
	}
	s.Coverage = info
}

// Write stores s as indented JSON at path.
func Write(fs afero.Fs, path string, s *Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Read loads a summary written by Write.
func Read(fs afero.Fs, path string) (*Summary, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("summary %s not found", path)
		}
		return nil, err
	}
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse summary: %w", err)
	}
	return &s, nil
}
