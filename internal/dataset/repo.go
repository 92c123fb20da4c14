package dataset

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/obadatech/tarkhees-backend/pkg/errors"
	pkgredis "github.com/obadatech/tarkhees-backend/pkg/redis"
)

// Repository is the single named slot the canonical dataset lives in.
// Load returns (nil, nil) when no dataset has been uploaded yet.
// Save overwrites the slot wholesale; there is no partial update.
type Repository interface {
	Load(ctx context.Context) ([]Client, error)
	Save(ctx context.Context, clients []Client) error
	Clear(ctx context.Context) error
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisRepository struct {
	store kvStore
	key   string
	ttl   time.Duration
}

// NewRedisRepository stores the dataset as a JSON array under one
// namespaced key, mirroring the single local-storage slot the dashboard
// frontend reads.
func NewRedisRepository(store kvStore, slot string, ttl time.Duration) Repository {
	return &redisRepository{
		store: store,
		key:   pkgredis.DatasetKey(slot),
		ttl:   ttl,
	}
}

func (r *redisRepository) Load(ctx context.Context) ([]Client, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dataset slot")
	}

	var clients []Client
	if err := json.Unmarshal([]byte(raw), &clients); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode dataset slot")
	}
	return clients, nil
}

func (r *redisRepository) Save(ctx context.Context, clients []Client) error {
	if clients == nil {
		clients = []Client{}
	}
	payload, err := json.Marshal(clients)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode dataset")
	}
	if err := r.store.Set(ctx, r.key, string(payload), r.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save dataset slot")
	}
	return nil
}

func (r *redisRepository) Clear(ctx context.Context) error {
	if err := r.store.Del(ctx, r.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear dataset slot")
	}
	return nil
}
