package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iequus/iequus_backend/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{Addr: "localhost:6379"})

	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout)
}

func TestNewRedisAndProbe(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisFromCentral(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, Probe(context.Background(), rdb))

	mr.Close()
	assert.Error(t, Probe(context.Background(), rdb))
}

func TestNewRedisEmptyAddr(t *testing.T) {
	_, err := NewRedis(Config{})
	assert.Error(t, err)
}
