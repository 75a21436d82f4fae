// Package localstore is the fast key/value store that holds data written on
// every change: the per-user task mirror and the cached profile.
//
// Two backends exist. RedisStore is used when REDIS_ADDR is configured;
// FileStore keeps one JSON file per key under a directory otherwise.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for missing keys.
var ErrNotFound = errors.New("key not found")

// Store is a durable keyed store of JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists keys starting with prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// GetJSON decodes the value at key into v. found is false for missing keys.
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it at key.
func SetJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// Open returns a RedisStore when addr is set, otherwise a FileStore in dir.
func Open(ctx context.Context, addr, password string, db int, dir string) (Store, error) {
	if addr != "" {
		return NewRedisStore(ctx, addr, password, db)
	}
	return NewFileStore(dir)
}
