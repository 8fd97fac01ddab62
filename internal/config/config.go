package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mmrzaf/fixturegen/internal/domain"
	"github.com/spf13/viper"
)

const EnvPrefix = "FIXTUREGEN"

type Config struct {
	FixturesDir      string              `mapstructure:"fixtures_dir" validate:"required"`
	Target           domain.TargetConfig `mapstructure:"target"`
	LedgerPath       string              `mapstructure:"ledger_path"`
	LogLevel         string              `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat        string              `mapstructure:"log_format" validate:"oneof=json console"`
	BindAddr         string              `mapstructure:"bind_addr" validate:"required"`
	Seed             int64               `mapstructure:"seed"`
	ClearConcurrency int                 `mapstructure:"clear_concurrency" validate:"gte=0"`
}

type options struct {
	configFile string
	envFile    string
}

type Option func(*options)

// WithConfigFile reads a YAML or JSON config file before the environment.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithEnvFile loads a dotenv file other than ./.env.
func WithEnvFile(path string) Option {
	return func(o *options) { o.envFile = path }
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("fixtures_dir", "./fixtures")
	v.SetDefault("target.name", "default")
	v.SetDefault("target.kind", domain.TargetMemory)
	v.SetDefault("target.dsn", "")
	v.SetDefault("target.database", "")
	v.SetDefault("target.schema", "")
	v.SetDefault("ledger_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("bind_addr", ":8080")
	v.SetDefault("seed", 0)
	v.SetDefault("clear_concurrency", 4)
}

// Load resolves configuration from defaults, an optional config file
// (fixturegen.yaml in the working directory when none is given), a .env
// file and FIXTUREGEN_* environment variables, in increasing precedence.
func Load(opts ...Option) (*Config, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	envFile := o.envFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && (o.envFile != "" || !errors.Is(err, os.ErrNotExist)) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)

	if o.configFile != "" {
		v.SetConfigFile(o.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", o.configFile, err)
		}
	} else {
		v.SetConfigName("fixturegen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Target.Kind = strings.ToLower(cfg.Target.Kind)

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
