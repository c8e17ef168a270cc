package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lynixdevs/urbanthreads/internal/order"
)

type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, upd AddressUpdate) error
	CustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]order.Customer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to get profile")
		return nil, fmt.Errorf("service: failed to get profile: %w", err)
	}
	return p, nil
}

func (s *service) UpdateAddress(ctx context.Context, id uuid.UUID, upd AddressUpdate) error {
	err := s.repo.UpdateAddress(ctx, id, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to update profile address")
		return fmt.Errorf("service: failed to update profile address: %w", err)
	}
	return nil
}

// CustomersByIDs satisfies order.CustomerDirectory for back-office views.
func (s *service) CustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]order.Customer, error) {
	profiles, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load customers: %w", err)
	}

	out := make(map[uuid.UUID]order.Customer, len(profiles))
	for _, p := range profiles {
		out[p.ID] = order.Customer{Name: p.FullName(), Email: p.Email}
	}
	return out, nil
}
