package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"covlaunch/backend/process"
	"covlaunch/core/agent"
	"covlaunch/core/coverage"
	"covlaunch/core/execdata"
	"covlaunch/core/launch"
	"covlaunch/core/logging"
	"covlaunch/node/config"
	"covlaunch/node/registry"
)

// app is the state shared by all commands. stdout and stderr are shared by the
// logger, the launched processes and the commands themselves.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}
	root := &cobra.Command{
		Use:   "covlaunch",
		Short: "Launch Java applications with code coverage recording",
		Long: `covlaunch starts Java applications from stored launch configurations.
Launched in coverage mode, the application runs with the coverage agent
attached and records execution data into a fresh .exec file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./covlaunch.yaml or $XDG_CONFIG_HOME/covlaunch/covlaunch.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	_ = a.v.BindPFlag("logging.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(
		newRunCmd(a),
		newTypesCmd(a),
		newCleanCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.ReadFile(a.v, a.cfgFile, true); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.stdout, a.stderr = process.SyncWriters(cmd.OutOrStdout(), cmd.ErrOrStderr())
	a.logger = logging.New(a.stderr, cfg.Logging.Level)
	return nil
}

// registry wires the host launch types: java.application runs through the
// process delegate, and its coverage mode through a coverage launcher that
// wraps that run delegate.
func (a *app) registry() (*registry.Registry, error) {
	reg := registry.New()
	lt := reg.Register(process.TypeID, "Java Application")
	lt.AddDelegate(launch.DelegateRef{
		ID:   "process",
		Name: "Java process",
		Delegate: process.New(process.Options{
			Stdout: a.stdout,
			Stderr: a.stderr,
			Logger: a.logger,
		}),
	}, launch.ModeRun)

	cov := coverage.New(coverage.Dependencies{
		Preferences: a.cfg.Agent.Preferences,
		Files:       execdata.New(a.cfg.ExecData.Dir),
		Agent:       agent.NewResolver(a.cfg.Agent.Jar, a.cfg.Agent.CacheDir),
		Logger:      a.logger,
	})
	if err := cov.Initialize(reg, process.TypeID); err != nil {
		return nil, err
	}
	lt.AddDelegate(launch.DelegateRef{ID: "coverage", Name: "Coverage", Delegate: cov}, launch.ModeCoverage)
	return reg, nil
}
