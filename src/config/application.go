// Package config loads the tarcodec application configuration from defaults, a yaml file and the environment.
package config

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/aurora-is-near/tarcodec/src/logger"
)

const ApplicationName = "tarcodec"

var ErrApplicationConfigNotFound = errors.New("application config not found")

// CliOnlyOptions are set from flags and never read from a file.
type CliOnlyOptions struct {
	ConfigPath string
	Verbosity  int
}

type Application struct {
	ConfigPath string         `yaml:",omitempty" json:"configPath"`
	CliOptions CliOnlyOptions `yaml:"-" json:"-"`
	Quiet      bool           `yaml:"quiet" json:"quiet" mapstructure:"quiet"`
	Log        logging        `yaml:"log" json:"log" mapstructure:"log"`
	Write      writing        `yaml:"write" json:"write" mapstructure:"write"`
	Serve      serving        `yaml:"serve" json:"serve" mapstructure:"serve"`
	Exclusions []string       `yaml:"exclude" json:"exclude" mapstructure:"exclude"`
}

// logging contains the logging options available to the user via the application config.
type logging struct {
	Structured   bool         `yaml:"structured" json:"structured" mapstructure:"structured"`
	Level        string       `yaml:"level" json:"level" mapstructure:"level"`
	LevelOpt     logrus.Level `yaml:"-" json:"-"`
	FileLocation string       `yaml:"file" json:"file" mapstructure:"file"`
}

// writing holds the header fixes applied when archives are written.
type writing struct {
	NumericIDs bool   `yaml:"numeric-ids" json:"numeric-ids" mapstructure:"numeric-ids"`
	UID        int    `yaml:"uid" json:"uid" mapstructure:"uid"`
	GID        int    `yaml:"gid" json:"gid" mapstructure:"gid"`
	Relative   string `yaml:"relative-to" json:"relative-to" mapstructure:"relative-to"`
	LookupName bool   `yaml:"lookup-names" json:"lookup-names" mapstructure:"lookup-names"`
}

type serving struct {
	Listen     string `yaml:"listen" json:"listen" mapstructure:"listen"`
	Prefix     string `yaml:"prefix" json:"prefix" mapstructure:"prefix"`
	SourceDir  string `yaml:"source" json:"source" mapstructure:"source"`
	AppendFile string `yaml:"append-file" json:"append-file" mapstructure:"append-file"`
}

func loadDefaultValues(v *viper.Viper) {
	v.SetDefault("quiet", false)
	v.SetDefault("log.level", "")
	v.SetDefault("log.file", "")
	v.SetDefault("log.structured", false)
	v.SetDefault("write.numeric-ids", false)
	v.SetDefault("write.uid", -1)
	v.SetDefault("write.gid", -1)
	v.SetDefault("write.relative-to", "")
	v.SetDefault("write.lookup-names", false)
	v.SetDefault("serve.listen", "127.0.0.1:9876")
	v.SetDefault("serve.prefix", "/snapshots/")
	v.SetDefault("serve.source", "/var/data/snapshots/")
	v.SetDefault("serve.append-file", ".tarserv_version")
	v.SetDefault("exclude", []string{})
}

// LoadApplicationConfig reads the configuration. A missing config file is not an error.
func LoadApplicationConfig(v *viper.Viper, cliOpts CliOnlyOptions) (*Application, error) {
	config := &Application{CliOptions: cliOpts}
	loadDefaultValues(v)

	if err := readConfig(v, cliOpts.ConfigPath); err != nil && !errors.Is(err, ErrApplicationConfigNotFound) {
		return nil, err
	}
	if err := v.Unmarshal(config); err != nil {
		return nil, errors.Wrap(err, "unable to parse config")
	}
	config.ConfigPath = v.ConfigFileUsed()

	if err := config.parseLogLevelOption(); err != nil {
		return nil, errors.Wrap(err, "invalid application config")
	}
	return config, nil
}

func (cfg *Application) parseLogLevelOption() error {
	switch {
	case cfg.Quiet:
		cfg.Log.LevelOpt = logrus.PanicLevel
	case cfg.CliOptions.Verbosity > 0:
		cfg.Log.LevelOpt = logger.LevelFromVerbosity(cfg.CliOptions.Verbosity, logrus.WarnLevel)
	case cfg.Log.Level != "":
		level, err := logrus.ParseLevel(cfg.Log.Level)
		if err != nil {
			return errors.Wrapf(err, "bad log level %q", cfg.Log.Level)
		}
		cfg.Log.LevelOpt = level
	default:
		cfg.Log.LevelOpt = logrus.WarnLevel
	}
	return nil
}

func (cfg Application) String() string {
	appCfgStr, err := yaml.Marshal(&cfg)
	if err != nil {
		return err.Error()
	}
	return string(appCfgStr)
}

// readConfig attempts to read the given config path from disk or discover an alternate store location.
func readConfig(v *viper.Viper, configPath string) error {
	v.AutomaticEnv()
	v.SetEnvPrefix(ApplicationName)
	// nested options come from the environment as e.g. TARCODEC_SERVE_LISTEN
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "unable to read application config=%q", configPath)
		}
		return nil
	}

	// 1. look for .<appname>.yaml (in the current directory)
	v.AddConfigPath(".")
	v.SetConfigName("." + ApplicationName)
	if err := v.ReadInConfig(); err == nil {
		return nil
	} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
		return errors.Wrapf(err, "unable to parse config=%q", v.ConfigFileUsed())
	}

	// 2. look for ~/.<appname>.yaml
	home, err := homedir.Dir()
	if err == nil {
		v.AddConfigPath(home)
		v.SetConfigName("." + ApplicationName)
		if err = v.ReadInConfig(); err == nil {
			return nil
		} else if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return errors.Wrapf(err, "unable to parse config=%q", v.ConfigFileUsed())
		}
	}
	return ErrApplicationConfigNotFound
}
