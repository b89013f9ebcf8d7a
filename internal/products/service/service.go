package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"product-catalog/internal/cache"
	"product-catalog/internal/products"
	"product-catalog/internal/products/cachekey"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	DefaultCacheTTL     = 60 * time.Second
	DefaultCacheTimeout = 200 * time.Millisecond
)

type Repository interface {
	Create(ctx context.Context, req products.Request, actor string) (products.Product, error)
	FindByID(ctx context.Context, id int64) (products.Product, error)
	Search(ctx context.Context, c products.Criteria, page products.PageRequest) ([]products.Product, int64, error)
	Update(ctx context.Context, id int64, req products.Request, actor string) (products.Product, error)
	SoftDelete(ctx context.Context, id int64, actor string) error
	ReduceQuantity(ctx context.Context, id int64, amount int64) (int64, error)
}

type Publisher interface {
	Publish(ctx context.Context, event products.ProductEvent) error
}

// Options tune the cache behaviour of the service.
type Options struct {
	TTL     time.Duration
	Timeout time.Duration
	// EvictSearchOnCreate drops cached search pages when a product is created.
	// Off by default: a new product may be missing from a cached page until
	// that page expires.
	EvictSearchOnCreate bool
}

// Service keeps the entity cache and the search cache coherent with the
// repository. Cache failures never fail a request.
type Service struct {
	repo      Repository
	cache     cache.Store
	publisher Publisher
	logger    zerolog.Logger
	metrics   *Metrics
	opts      Options
}

func New(repo Repository, store cache.Store, publisher Publisher, logger zerolog.Logger, metrics *Metrics, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCacheTimeout
	}
	return &Service{
		repo:      repo,
		cache:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		opts:      opts,
	}
}

func (s *Service) CreateProduct(ctx context.Context, req products.Request, actor string) (products.Response, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return products.Response{}, err
	}

	product, err := s.repo.Create(ctx, req, actor)
	if err != nil {
		return products.Response{}, fmt.Errorf("repo create: %w", err)
	}
	resp := product.Response()

	s.cachePut(ctx, cachekey.EntityNamespace, cachekey.Entity(resp.ID), resp)
	if s.opts.EvictSearchOnCreate {
		s.cacheEvictAll(ctx, cachekey.SearchNamespace)
	}

	s.publish(ctx, products.ProductEvent{
		EventType: products.EventCreated,
		ProductID: resp.ID,
		Name:      resp.Name,
		Quantity:  &resp.Quantity,
		Actor:     actor,
	})
	s.metrics.Created.Inc()
	return resp, nil
}

func (s *Service) GetProducts(ctx context.Context, c products.Criteria, page products.PageRequest) (products.Page, error) {
	page = normalizePage(page)
	key := cachekey.Search(c, page)

	var cached products.Page
	if s.cacheGet(ctx, cachekey.SearchNamespace, key, &cached) {
		return cached, nil
	}

	list, total, err := s.repo.Search(ctx, c, page)
	if err != nil {
		return products.Page{}, fmt.Errorf("repo search: %w", err)
	}

	result := products.Page{
		Items: make([]products.Response, 0, len(list)),
		Page:  page.Page,
		Size:  page.Size,
		Total: total,
	}
	for _, p := range list {
		result.Items = append(result.Items, p.Response())
	}

	s.cachePut(ctx, cachekey.SearchNamespace, key, result)
	return result, nil
}

func (s *Service) GetProductByID(ctx context.Context, id int64) (products.Response, error) {
	key := cachekey.Entity(id)

	var cached products.Response
	if s.cacheGet(ctx, cachekey.EntityNamespace, key, &cached) {
		return cached, nil
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return products.Response{}, fmt.Errorf("repo find: %w", err)
	}
	resp := product.Response()

	s.cachePut(ctx, cachekey.EntityNamespace, key, resp)
	return resp, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req products.Request, actor string) (products.Response, error) {
	req, err := normalizeRequest(req)
	if err != nil {
		return products.Response{}, err
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return products.Response{}, fmt.Errorf("repo find: %w", err)
	}

	product, err := s.repo.Update(ctx, id, req, actor)
	if err != nil {
		return products.Response{}, fmt.Errorf("repo update: %w", err)
	}
	resp := product.Response()

	s.cachePut(ctx, cachekey.EntityNamespace, cachekey.Entity(id), resp)
	s.cacheEvictAll(ctx, cachekey.SearchNamespace)

	s.publish(ctx, products.ProductEvent{
		EventType: products.EventUpdated,
		ProductID: id,
		Name:      resp.Name,
		Quantity:  &resp.Quantity,
		Actor:     actor,
	})
	s.metrics.Updated.Inc()
	return resp, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id int64, actor string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return fmt.Errorf("repo find: %w", err)
	}

	if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	s.cacheEvict(ctx, cachekey.EntityNamespace, cachekey.Entity(id))
	s.cacheEvictAll(ctx, cachekey.SearchNamespace)

	s.publish(ctx, products.ProductEvent{
		EventType: products.EventDeleted,
		ProductID: id,
		Actor:     actor,
	})
	s.metrics.Deleted.Inc()
	return nil
}

func (s *Service) ReduceProductQuantity(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", products.ErrInvalidInput)
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("repo find: %w", err)
	}
	if product.Quantity < amount {
		return fmt.Errorf("%w: product %d has %d, requested %d",
			products.ErrInsufficientQuantity, id, product.Quantity, amount)
	}

	remaining, err := s.repo.ReduceQuantity(ctx, id, amount)
	if err != nil {
		return fmt.Errorf("repo reduce quantity: %w", err)
	}

	s.cacheEvict(ctx, cachekey.EntityNamespace, cachekey.Entity(id))
	s.cacheEvictAll(ctx, cachekey.SearchNamespace)

	s.publish(ctx, products.ProductEvent{
		EventType: products.EventQuantityReduced,
		ProductID: id,
		Name:      product.Name,
		Quantity:  &remaining,
	})
	return nil
}

func (s *Service) publish(ctx context.Context, event products.ProductEvent) {
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error().
			Err(err).
			Str("event_type", event.EventType).
			Int64("product_id", event.ProductID).
			Msg("publish event failed")
	}
}

func normalizeRequest(req products.Request) (products.Request, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.Name == "":
		return req, fmt.Errorf("%w: name is required", products.ErrInvalidInput)
	case req.SupplyPrice < 0:
		return req, fmt.Errorf("%w: supply_price must not be negative", products.ErrInvalidInput)
	case req.Quantity < 0:
		return req, fmt.Errorf("%w: quantity must not be negative", products.ErrInvalidInput)
	}
	return req, nil
}

func normalizePage(page products.PageRequest) products.PageRequest {
	if page.Page < 0 {
		page.Page = 0
	}
	if page.Size < 1 {
		page.Size = defaultPageSize
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	// Keeps Page*Size within int so the offset stays a valid row count.
	if limit := math.MaxInt / page.Size; page.Page > limit {
		page.Page = limit
	}
	return page
}
