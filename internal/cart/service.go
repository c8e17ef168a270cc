package cart

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"

	"github.com/lynixdevs/urbanthreads/internal/catalog"
)

// Service loads a cart, applies one mutation and writes it back. Every
// mutation persists, matching the original container's write-on-change
// behavior. Two sessions sharing a cart id race last-write-wins.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, cartID string) (Cart, error) {
	return s.store.Load(ctx, cartID)
}

func (s *Service) Add(ctx context.Context, cartID string, product catalog.Product, quantity int, size string) (Cart, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}

	if err := c.Add(product, quantity, size); err != nil {
		return c, err
	}

	if err := s.store.Save(ctx, cartID, c); err != nil {
		return c, fmt.Errorf("service: failed to persist cart after add: %w", err)
	}

	return c, nil
}

func (s *Service) Remove(ctx context.Context, cartID string, productID uuid.UUID, size string) (Cart, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}

	c.Remove(productID, size)

	if err := s.store.Save(ctx, cartID, c); err != nil {
		return c, fmt.Errorf("service: failed to persist cart after remove: %w", err)
	}

	return c, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, cartID string, productID uuid.UUID, quantity int, size string) (Cart, error) {
	c, err := s.store.Load(ctx, cartID)
	if err != nil {
		return Cart{}, err
	}

	if err := c.UpdateQuantity(productID, quantity, size); err != nil {
		return c, err
	}

	if err := s.store.Save(ctx, cartID, c); err != nil {
		return c, fmt.Errorf("service: failed to persist cart after quantity update: %w", err)
	}

	return c, nil
}

func (s *Service) Clear(ctx context.Context, cartID string) error {
	if err := s.store.Delete(ctx, cartID); err != nil {
		return fmt.Errorf("service: failed to clear cart: %w", err)
	}
	return nil
}
