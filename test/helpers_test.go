//go:build integration
// +build integration

package test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/credkit/credkit"
	"github.com/credkit/credkit/store"
)

func newIntegrationEngine(t *testing.T, cfg credkit.Config) (*credkit.Engine, *store.RedisStore, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	principals := store.NewRedisStore(rdb, "ck", cfg.Fields)

	engine, err := credkit.New().
		WithConfig(cfg).
		WithStore(principals).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}

	return engine, principals, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func fastConfig() credkit.Config {
	cfg := credkit.DefaultConfig()
	cfg.Hashing.SaltLength = 16
	cfg.Hashing.Iterations = 10
	cfg.Hashing.KeyLength = 32
	return cfg
}
