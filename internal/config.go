package internal

import (
	"fmt"

	"github.com/hbomb79/Marquee/internal/api"
	"github.com/hbomb79/Marquee/internal/database"
	"github.com/hbomb79/Marquee/internal/movie"
	"github.com/ilyakaznacheev/cleanenv"
)

// MarqueeConfig is the struct used to contain the
// various user config supplied by file or the environment.
type MarqueeConfig struct {
	Services   ServiceConfig           `yaml:"docker_services"`
	Database   database.DatabaseConfig `yaml:"database" env-required:"true"`
	RestConfig api.RestConfig          `yaml:"rest"`
	Catalog    movie.Config            `yaml:"catalog"`
	LogLevel   string                  `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
}

// ServiceConfig is used to enable/disable the internal intialisation of
// supporting services for Marquee. By default the database is spawned
// automatically inside of Docker.
//
// EnablePostgres is defaulted by DefaultConfig and must not carry an env-default,
// as cleanenv applies those over an explicit 'false' read from the file.
type ServiceConfig struct {
	EnablePostgres bool `yaml:"enable_postgres" env:"SERVICE_ENABLE_POSTGRES"`
}

// DefaultConfig returns the config which LoadFromFile or LoadFromEnv should
// be applied on top of.
func DefaultConfig() MarqueeConfig {
	return MarqueeConfig{Services: ServiceConfig{EnablePostgres: true}}
}

// LoadFromFile reads a YAML configuration file in to the config, with
// any environment variables taking precedence over the values in the file.
func (config *MarqueeConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	return nil
}

// LoadFromEnv populates the config solely from the environment, used when
// no configuration file is available.
func (config *MarqueeConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return nil
}
