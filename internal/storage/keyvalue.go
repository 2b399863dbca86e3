// Package storage provides durable key-value adapters used for credential
// persistence.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// KeyValue is the durable storage collaborator. Implementations must replace
// values atomically; partial writes must never be observable.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
