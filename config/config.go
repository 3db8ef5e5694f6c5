// Package config loads the settings for a contract test run: where the booking service is and
// which credentials to authenticate with.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/restfulbooker/booker-contract-tests/servicedef"
)

// EnvPrefix is prepended to every setting name to form its environment variable, for instance
// BOOKER_BASE_URL.
const EnvPrefix = "BOOKER"

// DefaultEnvFile is loaded into the environment, if it exists, before settings are read.
const DefaultEnvFile = ".env"

const (
	defaultTimeout            = time.Second * 5
	defaultStatusQueryTimeout = time.Second * 10
	defaultParallel           = 1
)

// Config holds the settings for one test run. It is built once at startup and not modified
// after that.
type Config struct {
	BaseURL            string        `mapstructure:"base_url"`
	Username           string        `mapstructure:"username"`
	Password           string        `mapstructure:"password"`
	Timeout            time.Duration `mapstructure:"timeout"`
	StatusQueryTimeout time.Duration `mapstructure:"status_query_timeout"`
	Parallel           int           `mapstructure:"parallel"`
	Seed               int64         `mapstructure:"seed"`
	ScenarioDir        string        `mapstructure:"scenario_dir"`
}

// Credentials returns the configured username and password.
func (c Config) Credentials() servicedef.Credentials {
	return servicedef.Credentials{Username: c.Username, Password: c.Password}
}

// Validate reports the first setting that is missing or out of range.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("base URL is required (set base_url, BOOKER_BASE_URL, or -url)")
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL %q must start with http:// or https://", c.BaseURL)
	}
	if c.Username == "" || c.Password == "" {
		return errors.New("username and password are required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}
	return nil
}

// Load reads settings from, in increasing order of precedence: built-in defaults, the config
// file at path (if path is non-empty), and BOOKER_* environment variables. Variables defined
// in envFile, if that file exists, are added to the environment first without overriding
// variables that are already set.
//
// The config file may be in any format viper understands, such as YAML or Java properties,
// and uses the same setting names as the mapstructure tags of Config.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("base_url", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("status_query_timeout", defaultStatusQueryTimeout)
	v.SetDefault("parallel", defaultParallel)
	v.SetDefault("seed", 0)
	v.SetDefault("scenario_dir", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	return cfg, nil
}
