package redis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/obadatech/tarkhees-backend/pkg/config"
)

func TestDatasetKey(t *testing.T) {
	if got := DatasetKey("clientData"); got != "trk:dataset:clientData" {
		t.Fatalf("DatasetKey = %q, want trk:dataset:clientData", got)
	}
}

func TestIsNil(t *testing.T) {
	if !IsNil(redis.Nil) {
		t.Fatal("expected the missing-key sentinel to be recognized")
	}
	if !IsNil(fmt.Errorf("load slot: %w", redis.Nil)) {
		t.Fatal("expected a wrapped sentinel to be recognized")
	}
	if IsNil(errors.New("connection refused")) {
		t.Fatal("unrelated errors must not read as missing keys")
	}
	if IsNil(nil) {
		t.Fatal("nil is not the missing-key sentinel")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected an error when neither url nor address is set")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2"})
	if err != nil {
		t.Fatalf("options from url: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.DB != 2 {
		t.Fatalf("opts = %s db %d, want localhost:6379 db 2", opts.Addr, opts.DB)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache.internal:6380", DB: 1, PoolSize: 8})
	if err != nil {
		t.Fatalf("options from address: %v", err)
	}
	if opts.Addr != "cache.internal:6380" || opts.DB != 1 || opts.PoolSize != 8 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestClientGuardsUninitializedStore(t *testing.T) {
	c := &Client{}
	if err := c.Ping(t.Context()); err == nil {
		t.Fatal("expected ping on an uninitialized client to fail")
	}
	if _, err := c.Get(t.Context(), "k"); err == nil {
		t.Fatal("expected get on an uninitialized client to fail")
	}
}
