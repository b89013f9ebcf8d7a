// Package cache provides the key/value stores backing the product caches.
// Keys live in namespaces so a whole namespace can be dropped at once.
package cache

import (
	"context"
	"errors"
	"time"
)

// KeySeparator joins a namespace and a key.
const KeySeparator = "::"

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is a namespaced key/value cache with per-entry TTL.
type Store interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
	DeleteNamespace(ctx context.Context, namespace string) error
	Ping(ctx context.Context) error
}

func fullKey(namespace, key string) string {
	return namespace + KeySeparator + key
}

func namespacePrefix(namespace string) string {
	return namespace + KeySeparator
}
