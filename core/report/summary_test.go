package report

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"covlaunch/core/version"
)

func TestSummaryCoverage(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/exec/run.exec", []byte("0123456789"), 0644))

	s := New("app", "java.application", "coverage")
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.SetTiming(start, start.Add(1500*time.Millisecond))
	s.AddProcess(42)
	s.SetCoverage(fs, "/exec/run.exec", []string{"/app/classes"})

	require.Equal(t, version.SummaryVersion, s.Version)
	require.Equal(t, int64(1500), s.DurationMs)
	require.Equal(t, "2026-01-02T03:04:05Z", s.StartTime)
	require.True(t, s.Coverage.Exists)
	require.Equal(t, int64(10), s.Coverage.Bytes)

	require.NoError(t, Write(fs, "/out/summary.json", s))
	got, err := Read(fs, "/out/summary.json")
	require.NoError(t, err)
	require.Equal(t, s, got)
}

func TestSummaryMissingExecFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := New("app", "java.application", "coverage")
	s.SetCoverage(fs, "/exec/none.exec", nil)
	s.SetError(errors.New("agent unavailable"))
	s.SetError(nil)

	require.False(t, s.Coverage.Exists)
	require.Zero(t, s.Coverage.Bytes)
	require.Equal(t, "agent unavailable", s.Error)
	require.NotNil(t, s.Processes)
}

func TestReadMissing(t *testing.T) {
	_, err := Read(afero.NewMemMapFs(), "/nope.json")
	require.Error(t, err)
}
