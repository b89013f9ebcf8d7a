package service

import (
	"context"
	"encoding/json"
	"errors"

	"product-catalog/internal/cache"
)

// cacheGet decodes the entry at key into dst and reports whether it was a hit.
// Errors and undecodable entries count as misses.
func (s *Service) cacheGet(ctx context.Context, namespace, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	raw, err := s.cache.Get(ctx, namespace, key)
	if errors.Is(err, cache.ErrMiss) {
		s.metrics.cacheResult(namespace, resultMiss)
		return false
	}
	if err != nil {
		s.cacheFailed(namespace, key, "get", err)
		return false
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.cacheFailed(namespace, key, "decode", err)
		if err := s.cache.Delete(ctx, namespace, key); err != nil {
			s.cacheFailed(namespace, key, "evict", err)
		}
		return false
	}

	s.metrics.cacheResult(namespace, resultHit)
	return true
}

func (s *Service) cachePut(ctx context.Context, namespace, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.cacheFailed(namespace, key, "encode", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.cache.Set(ctx, namespace, key, raw, s.opts.TTL); err != nil {
		s.cacheFailed(namespace, key, "set", err)
	}
}

func (s *Service) cacheEvict(ctx context.Context, namespace, key string) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.cache.Delete(ctx, namespace, key); err != nil {
		s.cacheFailed(namespace, key, "evict", err)
	}
}

func (s *Service) cacheEvictAll(ctx context.Context, namespace string) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	if err := s.cache.DeleteNamespace(ctx, namespace); err != nil {
		s.cacheFailed(namespace, "*", "evict_all", err)
	}
}

func (s *Service) cacheFailed(namespace, key, op string, err error) {
	s.metrics.cacheResult(namespace, resultError)
	s.logger.Warn().
		Err(err).
		Str("namespace", namespace).
		Str("key", key).
		Str("op", op).
		Msg("cache operation failed, falling back to store")
}
