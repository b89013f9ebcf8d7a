package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/viccon/sturdyc"
)

const (
	defaultNumShards          = 64
	defaultEvictionPercentage = 10
	// sturdyc needs a client-wide TTL; entries carry their own deadline and
	// this only bounds how long an expired entry can occupy memory.
	maxEntryTTL = time.Hour
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is an in-process Store for single instance deployments.
type MemoryStore struct {
	client *sturdyc.Client[memoryEntry]
	now    func() time.Time
}

// NewMemoryStore creates a MemoryStore holding at most capacity entries.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("memory cache capacity must be greater than 0, got %d", capacity)
	}

	shards := defaultNumShards
	if capacity < shards {
		shards = 1
	}

	client := sturdyc.New[memoryEntry](capacity, shards, maxEntryTTL, defaultEvictionPercentage)
	return &MemoryStore{client: client, now: time.Now}, nil
}

func (m *MemoryStore) Get(_ context.Context, namespace, key string) ([]byte, error) {
	k := fullKey(namespace, key)
	entry, ok := m.client.Get(k)
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(entry.expires) {
		m.client.Delete(k)
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (m *MemoryStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > maxEntryTTL {
		ttl = maxEntryTTL
	}
	stored := make([]byte, len(value))
	copy(stored, value)

	m.client.Set(fullKey(namespace, key), memoryEntry{value: stored, expires: m.now().Add(ttl)})
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, namespace, key string) error {
	m.client.Delete(fullKey(namespace, key))
	return nil
}

// DeleteNamespace removes all entries whose key carries the namespace prefix.
func (m *MemoryStore) DeleteNamespace(_ context.Context, namespace string) error {
	prefix := namespacePrefix(namespace)
	for _, key := range m.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			m.client.Delete(key)
		}
	}
	return nil
}

func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Size reports the number of stored entries, expired ones included.
func (m *MemoryStore) Size() int {
	return m.client.Size()
}
