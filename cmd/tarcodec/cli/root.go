// Package cli holds the tarcodec commands.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aurora-is-near/tarcodec/src/config"
	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/logger"
)

// app carries the state shared by all commands of one invocation.
type app struct {
	v      *viper.Viper
	opts   config.CliOnlyOptions
	cfg    *config.Application
	logger *logger.LogrusLogger
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// New returns the root command reading and writing the process' standard streams.
func New() *cobra.Command {
	return newRoot(&app{
		v:      viper.New(),
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	})
}

func newRoot(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           config.ApplicationName,
		Short:         "Create, inspect and serve tar archives",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.ConfigPath, "config", "c", "", "application config file")
	flags.CountVarP(&a.opts.Verbosity, "verbose", "v", "increase verbosity (-v = info, -vv = debug, -vvv = trace)")
	flags.BoolP("quiet", "q", false, "suppress all logging output")
	a.bind(flags.Lookup("quiet"), "quiet")

	root.AddCommand(
		newCreate(a),
		newList(a),
		newSums(a),
		newServe(a),
		newSplit(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadApplicationConfig(a.v, a.opts)
	if err != nil {
		return errors.Wrap(err, "failed to load application config")
	}
	a.cfg = cfg

	l, err := logger.NewLogrusLogger(logger.LogrusConfig{
		EnableConsole: (cfg.Log.FileLocation == "" || cfg.CliOptions.Verbosity > 0) && !cfg.Quiet,
		EnableFile:    cfg.Log.FileLocation != "",
		Structured:    cfg.Log.Structured,
		Level:         cfg.Log.LevelOpt,
		FileLocation:  cfg.Log.FileLocation,
	}, a.stderr)
	if err != nil {
		return err
	}
	a.logger = l
	log.Set(l.Logger)
	log.Debugf("application config:\n%s", cfg)
	return nil
}

func (a *app) close() error {
	log.Set(nil)
	if a.logger == nil {
		return nil
	}
	return a.logger.Close()
}

// bind ties a flag to a config key so the flag wins over file and environment.
func (a *app) bind(flag *pflag.Flag, key string) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("unable to bind flag %q: %s", key, err))
	}
}
