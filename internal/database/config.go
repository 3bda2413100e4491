package database

import "time"

// DatabaseConfig is a subset of the configuration focusing solely
// on database connection items
type DatabaseConfig struct {
	User            string        `yaml:"username" env:"DB_USERNAME" env-required:"true"`
	Password        string        `yaml:"password" env:"DB_PASSWORD" env-required:"true"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"MARQUEE_DB"`
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"DB_PORT" env-default:"5432"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"DB_CONNECT_ATTEMPTS" env-default:"5"`
	RetryInterval   time.Duration `yaml:"retry_interval" env:"DB_RETRY_INTERVAL" env-default:"3s"`
}
