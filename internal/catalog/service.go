package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Service keeps an in-memory snapshot of the catalog and serves all reads
// from it. Refresh swaps the snapshot wholesale; a failed refresh keeps the
// previous one so shoppers never see an empty store because of a transient
// backend error.
type Service struct {
	repo Repository

	mu         sync.RWMutex
	products   []Product
	categories []Category
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Refresh replaces the cached product and category snapshots from the store.
// On error the previous snapshot stays in place.
func (s *Service) Refresh(ctx context.Context) error {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to refresh products, keeping previous snapshot")
		return fmt.Errorf("service: failed to refresh products: %w", err)
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to refresh categories, keeping previous snapshot")
		return fmt.Errorf("service: failed to refresh categories: %w", err)
	}

	s.mu.Lock()
	s.products = products
	s.categories = categories
	s.mu.Unlock()

	log.Info().Int("products", len(products)).Int("categories", len(categories)).Msg("service: catalog snapshot refreshed")
	return nil
}

// Products returns a copy of the current snapshot.
func (s *Service) Products() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

func (s *Service) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// FeaturedProducts returns the snapshot entries flagged for the landing page.
func (s *Service) FeaturedProducts() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0)
	for _, p := range s.products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// GetProduct serves a product from the snapshot, falling back to the store
// when the snapshot has not seen the id yet (e.g. just created by an admin).
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	s.mu.RLock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			s.mu.RUnlock()
			return &p, nil
		}
	}
	s.mu.RUnlock()

	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("service: failed to get product %s: %w", id, err)
	}
	return p, nil
}

// Search applies the filter and sort derivations over the current snapshot.
func (s *Service) Search(f Filter, key SortKey) []Product {
	return SortProducts(FilterProducts(s.Products(), f), key)
}

// CreateProduct writes a new product and refreshes the snapshot. Past order
// rows are never touched: order items carry their own price snapshots.
func (s *Service) CreateProduct(ctx context.Context, p *Product) error {
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("service: failed to create product: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("service: product created but snapshot refresh failed")
	}
	return nil
}

// UpdateProduct persists an admin edit and refreshes the snapshot.
func (s *Service) UpdateProduct(ctx context.Context, p *Product) error {
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("service: failed to update product: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("service: product updated but snapshot refresh failed")
	}
	return nil
}
