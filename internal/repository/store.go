package repository

import (
	"context"
	"errors"
)

var (
	// ErrPersistence marks store read/write and serialization failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrKeyNotFound is returned by decoders when a key holds no value.
	ErrKeyNotFound = errors.New("key not found")
)

// KeyValueStore is a synchronous string key/value store, the shape of a
// browser's localStorage.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
