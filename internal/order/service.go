package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

// Customer is the slice of a profile the back-office needs next to an order.
type Customer struct {
	Name  string
	Email string
}

// CustomerDirectory resolves customer display data for order views. The
// profile service implements it; the indirection keeps this package free of
// a profile dependency.
type CustomerDirectory interface {
	CustomersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]Customer, error)
}

// AdminListParams narrows the back-office order list. Search is a free-text
// substring applied in memory over the fetched page, matching order id and
// customer name.
type AdminListParams struct {
	Status *Status
	Search string
	Limit  int
	Offset int
}

// Summary is one row of the back-office order list.
type Summary struct {
	Order
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

type Service interface {
	ListOrders(ctx context.Context, params AdminListParams) ([]Summary, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Summary, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
}

type service struct {
	repo      Repository
	customers CustomerDirectory
}

func NewService(repo Repository, customers CustomerDirectory) Service {
	return &service{repo: repo, customers: customers}
}

func (s *service) ListOrders(ctx context.Context, params AdminListParams) ([]Summary, error) {
	orders, err := s.repo.List(ctx, ListParams{Status: params.Status, Limit: params.Limit, Offset: params.Offset})
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	summaries, err := s.withCustomers(ctx, orders)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(params.Search))
	if search == "" {
		return summaries, nil
	}

	filtered := make([]Summary, 0, len(summaries))
	for _, sum := range summaries {
		if strings.Contains(strings.ToLower(sum.ID.String()), search) ||
			strings.Contains(strings.ToLower(sum.CustomerName), search) {
			filtered = append(filtered, sum)
		}
	}

	return filtered, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*Summary, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", id).Msg("service: failed to fetch order")
		return nil, fmt.Errorf("service: failed to fetch order: %w", err)
	}

	summaries, err := s.withCustomers(ctx, []Order{*o})
	if err != nil {
		return nil, err
	}

	return &summaries[0], nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus validates the transition before touching the store. Setting
// the status an order already has is a no-op, not an error.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status already set, nothing to do")
		return nil
	}

	if !CanTransition(current.Status, newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).Stringer("old_status", current.Status).Stringer("new_status", newStatus).Msg("service: order status updated")
	return nil
}

func (s *service) withCustomers(ctx context.Context, orders []Order) ([]Summary, error) {
	ids := make([]uuid.UUID, 0, len(orders))
	seen := make(map[uuid.UUID]bool)
	for _, o := range orders {
		if !seen[o.UserID] {
			seen[o.UserID] = true
			ids = append(ids, o.UserID)
		}
	}

	customers := map[uuid.UUID]Customer{}
	if len(ids) > 0 {
		var err error
		customers, err = s.customers.CustomersByIDs(ctx, ids)
		if err != nil {
			log.Error().Err(err).Msg("service: failed to resolve customers for orders")
			return nil, fmt.Errorf("service: failed to resolve customers: %w", err)
		}
	}

	summaries := make([]Summary, 0, len(orders))
	for _, o := range orders {
		c := customers[o.UserID]
		summaries = append(summaries, Summary{Order: o, CustomerName: c.Name, CustomerEmail: c.Email})
	}

	return summaries, nil
}
