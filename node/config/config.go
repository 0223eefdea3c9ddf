package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"covlaunch/core/logging"
)

// EnvPrefix prefixes environment overrides, e.g. COVLAUNCH_AGENT_INCLUDES.
const EnvPrefix = "COVLAUNCH"

// Config drives coverage launches.
type Config struct {
	Agent    AgentConfig    `mapstructure:"agent"`
	ExecData ExecDataConfig `mapstructure:"execdata"`
	Launch   LaunchConfig   `mapstructure:"launch"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// AgentConfig holds the coverage agent filters and its location.
type AgentConfig struct {
	Preferences `mapstructure:",squash"`
	// Jar is the packaged agent jar.
	Jar string `mapstructure:"jar"`
	// CacheDir receives the extracted agent jar.
	CacheDir string `mapstructure:"cache_dir"`
}

// Preferences are the class filters passed to the agent.
type Preferences struct {
	Includes        string `mapstructure:"includes"`
	Excludes        string `mapstructure:"excludes"`
	ExclClassloader string `mapstructure:"exclclassloader"`
}

func (p Preferences) AgentIncludes() string        { return p.Includes }
func (p Preferences) AgentExcludes() string        { return p.Excludes }
func (p Preferences) AgentExclClassloader() string { return p.ExclClassloader }

type ExecDataConfig struct {
	Dir string `mapstructure:"dir"`
}

type LaunchConfig struct {
	// Concurrency limits the number of launches the manager runs at once.
	Concurrency int `mapstructure:"concurrency"`
	// Configurations is the YAML file holding launch configurations.
	Configurations string `mapstructure:"configurations"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	base := filepath.Join(os.TempDir(), "covlaunch")
	return Config{
		Agent: AgentConfig{
			Preferences: Preferences{
				Includes:        "*",
				Excludes:        "",
				ExclClassloader: "sun.reflect.DelegatingClassLoader",
			},
			CacheDir: filepath.Join(base, "agent"),
		},
		ExecData: ExecDataConfig{Dir: filepath.Join(base, "execdata")},
		Launch: LaunchConfig{
			Concurrency:    1,
			Configurations: "launches.yaml",
		},
		Logging: LoggingConfig{Level: logging.LevelInfo},
	}
}

// SetDefaults registers Defaults on v so they apply without a config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("agent.includes", d.Agent.Includes)
	v.SetDefault("agent.excludes", d.Agent.Excludes)
	v.SetDefault("agent.exclclassloader", d.Agent.ExclClassloader)
	v.SetDefault("agent.jar", d.Agent.Jar)
	v.SetDefault("agent.cache_dir", d.Agent.CacheDir)
	v.SetDefault("execdata.dir", d.ExecData.Dir)
	v.SetDefault("launch.concurrency", d.Launch.Concurrency)
	v.SetDefault("launch.configurations", d.Launch.Configurations)
	v.SetDefault("logging.level", d.Logging.Level)
}

// NewViper returns a viper instance with defaults and environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadFile loads path into v. A missing default file is not an error when
// optional is set.
func ReadFile(v *viper.Viper, path string, optional bool) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("covlaunch")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "covlaunch"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if optional && path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate ensures the config is usable.
func (c Config) Validate() error {
	if c.ExecData.Dir == "" {
		return fmt.Errorf("execdata.dir required")
	}
	if c.Agent.CacheDir == "" {
		return fmt.Errorf("agent.cache_dir required")
	}
	if c.Launch.Concurrency <= 0 {
		return fmt.Errorf("launch.concurrency must be > 0")
	}
	if strings.Contains(c.Agent.Includes, ",") || strings.Contains(c.Agent.Excludes, ",") || strings.Contains(c.Agent.ExclClassloader, ",") {
		return fmt.Errorf("agent filters use ':' as separator, not ','")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("unknown logging level %q", c.Logging.Level)
	}
	return nil
}
