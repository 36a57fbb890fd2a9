package config

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the optional redis client. Redis is used only to
// reduce contention between overlapping sweep invocations; an empty host
// disables it.
type RedisConfig struct {
	Host     string `yaml:"host" json:"host" env:"HOOKRELAY_REDIS_HOST" default:""`
	Port     uint32 `yaml:"port" json:"port" env:"HOOKRELAY_REDIS_PORT" default:"6379"`
	Password string `yaml:"password" json:"password" env:"HOOKRELAY_REDIS_PASSWORD" default:""`
	Database uint32 `yaml:"database" json:"database" env:"HOOKRELAY_REDIS_DATABASE" default:"0"`
}

func (cfg RedisConfig) Enabled() bool {
	return cfg.Host != ""
}

func (cfg RedisConfig) GetClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       int(cfg.Database),
	})
}

func (cfg RedisConfig) Validate() error {
	if cfg.Port > 65535 {
		return fmt.Errorf("port must be in the range [0, 65535]")
	}
	return nil
}
