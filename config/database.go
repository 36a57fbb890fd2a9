package config

import (
	"fmt"
)

type DatabaseConfig struct {
	Host        string `yaml:"host" json:"host" env:"HOOKRELAY_DATABASE_HOST" default:"localhost"`
	Port        uint32 `yaml:"port" json:"port" env:"HOOKRELAY_DATABASE_PORT" default:"5432"`
	Username    string `yaml:"username" json:"username" env:"HOOKRELAY_DATABASE_USERNAME" default:"hookrelay"`
	Password    string `yaml:"password" json:"password" env:"HOOKRELAY_DATABASE_PASSWORD" default:""`
	Database    string `yaml:"database" json:"database" env:"HOOKRELAY_DATABASE_DATABASE" default:"hookrelay"`
	MaxPoolSize uint32 `yaml:"max_pool_size" json:"max_pool_size" env:"HOOKRELAY_DATABASE_MAX_POOL_SIZE" default:"40"`
	MaxLifetime uint32 `yaml:"max_life_time" json:"max_life_time" env:"HOOKRELAY_DATABASE_MAX_LIFE_TIME" default:"1800"`
}

func (cfg DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
	)
}

func (cfg DatabaseConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	return nil
}
