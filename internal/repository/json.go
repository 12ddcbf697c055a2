package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// JSONStore stores JSON documents in a KeyValueStore. Failures are logged
// here so callers can treat persistence as best effort.
type JSONStore struct {
	kv     KeyValueStore
	logger *slog.Logger
}

func NewJSONStore(kv KeyValueStore, logger *slog.Logger) *JSONStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONStore{kv: kv, logger: logger}
}

// Save serializes v under key. The returned error wraps ErrPersistence and
// has already been logged.
func (s *JSONStore) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		err = fmt.Errorf("%w: encode %q: %v", ErrPersistence, key, err)
		s.logger.ErrorContext(ctx, "storage save failed", "key", key, "error", err)
		return err
	}
	if err := s.kv.Set(ctx, key, string(data)); err != nil {
		err = fmt.Errorf("%w: write %q: %w", ErrPersistence, key, err)
		s.logger.ErrorContext(ctx, "storage save failed", "key", key, "error", err)
		return err
	}
	return nil
}

// Decode reads key into dst. A missing or empty value yields ErrKeyNotFound.
func (s *JSONStore) Decode(ctx context.Context, key string, dst any) error {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: read %q: %w", ErrPersistence, key, err)
	}
	if !ok || raw == "" {
		return ErrKeyNotFound
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("%w: decode %q: %v", ErrPersistence, key, err)
	}
	return nil
}

// Remove deletes key, logging any failure.
func (s *JSONStore) Remove(ctx context.Context, key string) error {
	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.ErrorContext(ctx, "storage remove failed", "key", key, "error", err)
		return fmt.Errorf("%w: delete %q: %w", ErrPersistence, key, err)
	}
	return nil
}

// Clear empties the underlying store, logging any failure.
func (s *JSONStore) Clear(ctx context.Context) error {
	if err := s.kv.Clear(ctx); err != nil {
		s.logger.ErrorContext(ctx, "storage clear failed", "error", err)
		return fmt.Errorf("%w: clear: %w", ErrPersistence, err)
	}
	return nil
}

// Load returns the value stored under key, or def when the key is absent or
// unreadable. Read and decode failures are logged.
func Load[T any](ctx context.Context, s *JSONStore, key string, def T) T {
	var v T
	if err := s.Decode(ctx, key, &v); err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			s.logger.ErrorContext(ctx, "storage load failed", "key", key, "error", err)
		}
		return def
	}
	return v
}
