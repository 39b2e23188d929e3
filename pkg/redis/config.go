package redis

import (
	"time"

	"github.com/iequus/iequus_backend/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// FromCentralConfig converts config.RedisConfig, filling pool and timeout
// defaults for anything left at zero.
func FromCentralConfig(c config.RedisConfig) Config {
	cfg := Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  seconds(c.DialTimeoutSeconds, 5*time.Second),
		ReadTimeout:  seconds(c.ReadTimeoutSeconds, 3*time.Second),
		WriteTimeout: seconds(c.WriteTimeoutSeconds, 3*time.Second),
	}
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	if cfg.MinIdleConns <= 0 {
		cfg.MinIdleConns = 2
	}
	return cfg
}
