package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"covlaunch/core/coverage"
	"covlaunch/core/launch"
	"covlaunch/core/report"
	"covlaunch/node/manager"
)

type runOptions struct {
	mode       string
	launches   string
	summaryDir string
	metricsOut string
}

func newRunCmd(a *app) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run <configuration>...",
		Short: "Launch stored configurations and wait for them to exit",
		Long: `Launch one or more configurations from the launch configuration file.
Configurations run concurrently up to launch.concurrency. The command exits
with the first non-zero exit code of the launched applications.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.mode, "mode", "m", string(launch.ModeCoverage), "launch mode: run or coverage")
	cmd.Flags().StringVar(&opts.launches, "launches", "", "launch configuration file (default from launch.configurations)")
	cmd.Flags().StringVar(&opts.summaryDir, "summary", "", "directory receiving a <configuration>.json summary per launch")
	cmd.Flags().StringVar(&opts.metricsOut, "metrics-out", "", "write Prometheus metrics to this file when done")
	return cmd
}

func (a *app) run(cmd *cobra.Command, names []string, opts runOptions) error {
	path := opts.launches
	if path == "" {
		path = a.cfg.Launch.Configurations
	}
	store, err := launch.LoadStore(path)
	if err != nil {
		return err
	}
	configs := make([]launch.Configuration, 0, len(names))
	for _, name := range names {
		cfg, err := store.Get(name)
		if err != nil {
			return err
		}
		configs = append(configs, cfg)
	}

	reg, err := a.registry()
	if err != nil {
		return err
	}
	mgr, err := manager.New(a.cfg, reg)
	if err != nil {
		return err
	}
	mgr.Logger = a.logger

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mode := launch.Mode(opts.mode)
	results := make([]<-chan manager.Result, 0, len(configs))
	for _, cfg := range configs {
		results = append(results, mgr.Go(ctx, cfg, mode))
	}

	fs := afero.NewOsFs()
	var firstErr error
	exitCode := 0
	for _, ch := range results {
		res := <-ch
		if res.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", res.Configuration, res.Err)
		}
		if res.ExitCode != 0 && exitCode == 0 {
			exitCode = res.ExitCode
		}
		if opts.summaryDir != "" {
			if err := writeSummary(fs, opts.summaryDir, res); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		if file := res.ExecutionDataFile(); file != "" && res.Err == nil {
			fmt.Fprintf(a.stdout, "%s: execution data %s\n", res.Configuration, file)
		}
	}
	mgr.Wait()

	if opts.metricsOut != "" {
		if err := writeMetrics(mgr, opts.metricsOut); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return firstErr
	}
	if exitCode != 0 {
		return &exitCodeError{code: exitCode}
	}
	return ctx.Err()
}

func writeSummary(fs afero.Fs, dir string, res manager.Result) error {
	s := report.New(res.Configuration, res.LaunchType, string(res.Mode))
	s.Delegate = res.Delegate
	s.ExitCode = res.ExitCode
	s.SetTiming(res.StartedAt, res.CompletedAt)
	s.SetError(res.Err)
	if res.Handle != nil {
		for _, p := range res.Handle.Processes() {
			s.AddProcess(p.PID())
		}
	}
	if file := res.ExecutionDataFile(); file != "" {
		var scope []string
		if cl, ok := res.Handle.(*coverage.Launch); ok {
			scope = cl.Scope()
		}
		s.SetCoverage(fs, file, scope)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	return report.Write(fs, filepath.Join(dir, res.Configuration+".json"), s)
}

func writeMetrics(mgr *manager.Manager, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := mgr.Metrics.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
