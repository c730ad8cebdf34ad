// Package kvstore is a small string-keyed byte store modelled on browser
// local storage. Saved plans live here.
package kvstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when the backing store cannot be reached
var ErrUnavailable = errors.New("kv store unavailable")

// Store is the local-storage style interface used by the plan store
type Store interface {
	// GetItem returns the value for key. ok is false when the key is absent.
	GetItem(ctx context.Context, key string) (value []byte, ok bool, err error)
	SetItem(ctx context.Context, key string, value []byte) error
	RemoveItem(ctx context.Context, key string) error
	Close() error
}

// Type selects a backend
type Type string

const (
	TypeMemory Type = "memory"
	TypeSQLite Type = "sqlite"
	TypeRedis  Type = "redis"
)

// Config selects and configures the backend
type Config struct {
	Type          Type
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// New opens the backend named by cfg.Type
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case TypeMemory:
		return NewMemoryStore(), nil
	case TypeSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	case TypeRedis:
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown kv store type: %s", cfg.Type)
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
