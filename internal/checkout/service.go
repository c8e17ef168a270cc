// Package checkout drives the order placement flow:
//
//	Idle -> Validating -> Submitting -> Succeeded | Failed
//
// Guards (signed-in user, non-empty cart) fail the flow before any store
// call. Validation failures stay in Validating with field-level errors. The
// order and its items are written in one repository transaction; everything
// after that point (cart clear, saved address, confirmation email) is
// best-effort and only ever downgrades to a warning.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/lynixdevs/urbanthreads/internal/cart"
	"github.com/lynixdevs/urbanthreads/internal/order"
	"github.com/lynixdevs/urbanthreads/internal/profile"
)

type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

var decimalHundred = decimal.New(100, 0)

// ErrCheckoutInFlight rejects a duplicate submission while the user's
// previous one is still running (double-click, impatient retry).
var ErrCheckoutInFlight = errors.New("checkout already in progress for this user")

// Input is the checkout form payload.
type Input struct {
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	PaymentMethod   order.PaymentMethod   `json:"payment_method"`
	SaveAddress     bool                  `json:"save_address"`
}

// Result reports where the flow ended and what it produced. FieldErrors is
// populated only in Validating; Warnings carry non-fatal side-effect
// failures on a Succeeded result.
type Result struct {
	State       State             `json:"state"`
	Order       *order.Order      `json:"order,omitempty"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
	Warnings    []string          `json:"warnings,omitempty"`
	Message     string            `json:"message,omitempty"`
}

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, cartID string) (cart.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

// OrderCreator is the slice of the order repository checkout needs.
type OrderCreator interface {
	Create(ctx context.Context, o *order.Order) error
}

type AddressSaver interface {
	UpdateAddress(ctx context.Context, id uuid.UUID, upd profile.AddressUpdate) error
}

type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order, customerEmail string) error
}

type Service struct {
	orders   OrderCreator
	carts    Carts
	profiles AddressSaver
	notifier Notifier
	validate *validator.Validate

	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewService(orders OrderCreator, carts Carts, profiles AddressSaver, notifier Notifier) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		profiles: profiles,
		notifier: notifier,
		validate: validator.New(),
		inFlight: make(map[uuid.UUID]struct{}),
	}
}

// Submit runs one checkout attempt for the given user. A nil error with a
// Failed or Validating state is a flow outcome the caller should show the
// shopper; a non-nil error is an infrastructure failure.
func (s *Service) Submit(ctx context.Context, user *profile.Profile, input Input) (*Result, error) {
	if user == nil {
		return &Result{State: StateFailed, Message: "You must be signed in to complete your purchase."}, nil
	}

	if err := s.acquire(user.ID); err != nil {
		return nil, err
	}
	defer s.release(user.ID)

	cartID := user.ID.String()
	c, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("checkout: failed to load cart: %w", err)
	}

	if c.IsEmpty() {
		return &Result{State: StateFailed, Message: "Your cart is empty. Please add products to proceed."}, nil
	}

	if fieldErrors := s.validateInput(input); len(fieldErrors) > 0 {
		return &Result{State: StateValidating, FieldErrors: fieldErrors}, nil
	}

	o := buildOrder(user.ID, c, input)

	if err := s.orders.Create(ctx, o); err != nil {
		log.Error().Err(err).Stringer("user_id", user.ID).Msg("checkout: order placement failed")
		return &Result{State: StateFailed, Message: "There was an error processing your order."},
			fmt.Errorf("checkout: failed to place order: %w", err)
	}

	result := &Result{State: StateSucceeded, Order: o}

	if err := s.carts.Clear(ctx, cartID); err != nil {
		log.Warn().Err(err).Stringer("order_id", o.ID).Msg("checkout: order placed but cart clear failed")
		result.Warnings = append(result.Warnings, "Your order was placed, but the cart could not be cleared.")
	}

	if input.SaveAddress {
		if err := s.profiles.UpdateAddress(ctx, user.ID, addressUpdate(input.ShippingAddress)); err != nil {
			log.Warn().Err(err).Stringer("order_id", o.ID).Msg("checkout: failed to save shipping address to profile")
			result.Warnings = append(result.Warnings, "Your order was placed, but the address could not be saved to your profile.")
		}
	}

	if err := s.notifier.SendOrderConfirmation(ctx, o, user.Email); err != nil {
		log.Warn().Err(err).Stringer("order_id", o.ID).Msg("checkout: confirmation email failed")
		result.Warnings = append(result.Warnings, "Your order was placed, but the confirmation email could not be sent.")
	}

	log.Info().
		Stringer("order_id", o.ID).
		Stringer("user_id", user.ID).
		Int64("total_cents", o.TotalCents).
		Msg("checkout: order placed")

	return result, nil
}

func (s *Service) acquire(userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[userID]; busy {
		return ErrCheckoutInFlight
	}
	s.inFlight[userID] = struct{}{}
	return nil
}

func (s *Service) release(userID uuid.UUID) {
	s.mu.Lock()
	delete(s.inFlight, userID)
	s.mu.Unlock()
}

func (s *Service) validateInput(input Input) map[string]string {
	fieldErrors := make(map[string]string)

	if err := s.validate.Struct(input.ShippingAddress); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fe := range validationErrors {
				fieldErrors[snakeCase(fe.Field())] = "this field is required"
			}
		} else {
			fieldErrors["shipping_address"] = "invalid shipping address"
		}
	}

	switch input.PaymentMethod {
	case order.PaymentCashOnDelivery, order.PaymentBankTransfer:
	case order.PaymentCreditCard:
		fieldErrors["payment_method"] = "credit card payments are currently disabled"
	default:
		fieldErrors["payment_method"] = "unknown payment method"
	}

	return fieldErrors
}

// buildOrder snapshots the cart into a pending order. Unit prices are the
// effective prices at this moment, in minor units; the stored total is
// computed once here and never recomputed.
func buildOrder(userID uuid.UUID, c cart.Cart, input Input) *order.Order {
	items := make([]order.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, order.OrderItem{
			ProductID:      line.Product.ID,
			ProductName:    line.Product.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: line.Product.EffectivePrice().Mul(decimalHundred).Round(0).IntPart(),
			Size:           line.Size,
		})
	}

	return &order.Order{
		UserID:          userID,
		Status:          order.StatusPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		TotalCents:      c.TotalCents(),
		Items:           items,
	}
}

func addressUpdate(a order.ShippingAddress) profile.AddressUpdate {
	return profile.AddressUpdate{
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Address:    a.Address,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
	}
}

// snakeCase converts validator's Go field names to the JSON names used on
// the form (PostalCode -> postal_code).
func snakeCase(field string) string {
	var b strings.Builder
	for i, r := range field {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
