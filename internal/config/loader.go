package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	configDir  = ".sqlgrader"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "SQLGRADER"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		validateInst = validator.New(validator.WithRequiredStructEnabled())
	})
	return validateInst
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType(configType)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.human_readable", false)
	v.SetDefault("evaluation.timeout", "10s")
	v.SetDefault("evaluation.max_rows", 5000)
	v.SetDefault("evaluation.max_query_length", 10000)
	v.SetDefault("evaluation.max_parentheses", 20)
	v.SetDefault("evaluation.locale", "en")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from path, or when path is empty from
// ./config.yaml or ~/.sqlgrader/config.yaml. A missing default file yields
// the defaults; a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFile)
		v.AddConfigPath(".")
		if dir, err := configDirPath(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct constraints on cfg.
func Validate(cfg *Config) error {
	if err := validatorInstance().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Save writes cfg as YAML to path, or to ~/.sqlgrader/config.yaml when path
// is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		dir, err := configDirPath()
		if err != nil {
			return fmt.Errorf("config dir: %w", err)
		}
		path = filepath.Join(dir, configFile+"."+configType)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType(configType)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)
	v.Set("evaluation", cfg.Evaluation)
	v.Set("databases", cfg.Databases)

	return v.WriteConfigAs(path)
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
