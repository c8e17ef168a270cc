package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lynixdevs/urbanthreads/internal/cart"
	"github.com/lynixdevs/urbanthreads/internal/catalog"
	"github.com/lynixdevs/urbanthreads/internal/checkout"
	"github.com/lynixdevs/urbanthreads/internal/order"
	"github.com/lynixdevs/urbanthreads/internal/profile"
)

type mockCarts struct {
	getFunc   func(ctx context.Context, cartID string) (cart.Cart, error)
	clearFunc func(ctx context.Context, cartID string) error
}

func (m *mockCarts) Get(ctx context.Context, cartID string) (cart.Cart, error) {
	return m.getFunc(ctx, cartID)
}

func (m *mockCarts) Clear(ctx context.Context, cartID string) error {
	if m.clearFunc == nil {
		return nil
	}
	return m.clearFunc(ctx, cartID)
}

type mockOrders struct {
	createFunc func(ctx context.Context, o *order.Order) error
	created    []*order.Order
}

func (m *mockOrders) Create(ctx context.Context, o *order.Order) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, o); err != nil {
			return err
		}
	}
	m.created = append(m.created, o)
	return nil
}

type mockProfiles struct {
	updateAddressFunc func(ctx context.Context, id uuid.UUID, upd profile.AddressUpdate) error
	updates           []profile.AddressUpdate
}

func (m *mockProfiles) UpdateAddress(ctx context.Context, id uuid.UUID, upd profile.AddressUpdate) error {
	if m.updateAddressFunc != nil {
		if err := m.updateAddressFunc(ctx, id, upd); err != nil {
			return err
		}
	}
	m.updates = append(m.updates, upd)
	return nil
}

type mockNotifier struct {
	sendFunc func(ctx context.Context, o *order.Order, email string) error
	sent     int
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, o *order.Order, email string) error {
	m.sent++
	if m.sendFunc != nil {
		return m.sendFunc(ctx, o, email)
	}
	return nil
}

func testUser(t *testing.T) *profile.Profile {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return &profile.Profile{ID: id, Email: "shopper@example.com", Role: profile.RoleCustomer}
}

func testCart(t *testing.T) cart.Cart {
	t.Helper()

	hoodieID, err := uuid.NewV4()
	require.NoError(t, err)
	teeID, err := uuid.NewV4()
	require.NoError(t, err)

	sale := decimal.RequireFromString("29.99")

	var c cart.Cart
	require.NoError(t, c.Add(catalog.Product{
		ID:    hoodieID,
		Name:  "Urban Graffiti Hoodie",
		Price: decimal.RequireFromString("79.99"),
	}, 1, "M"))
	require.NoError(t, c.Add(catalog.Product{
		ID:        teeID,
		Name:      "Street Art Tee",
		Price:     decimal.RequireFromString("39.99"),
		SalePrice: &sale,
		Sale:      true,
	}, 2, "S"))

	return c
}

func validInput() checkout.Input {
	return checkout.Input{
		ShippingAddress: order.ShippingAddress{
			FirstName:  "Ada",
			LastName:   "Lovelace",
			Address:    "1 Analytical Way",
			City:       "London",
			State:      "LDN",
			PostalCode: "EC1",
			Country:    "United Kingdom",
			Phone:      "+44 20 0000 0000",
		},
		PaymentMethod: order.PaymentCashOnDelivery,
	}
}

func newTestService(carts checkout.Carts, orders *mockOrders, profiles *mockProfiles, notifier *mockNotifier) *checkout.Service {
	return checkout.NewService(orders, carts, profiles, notifier)
}

func TestSubmit_RequiresSignedInUser(t *testing.T) {
	orders := &mockOrders{}
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		t.Fatal("cart must not be touched for an unauthenticated checkout")
		return cart.Cart{}, nil
	}}

	svc := newTestService(carts, orders, &mockProfiles{}, &mockNotifier{})

	result, err := svc.Submit(context.Background(), nil, validInput())
	require.NoError(t, err)

	assert.Equal(t, checkout.StateFailed, result.State)
	assert.NotEmpty(t, result.Message)
	assert.Empty(t, orders.created)
}

func TestSubmit_EmptyCartFailsWithoutOrderCall(t *testing.T) {
	orders := &mockOrders{createFunc: func(ctx context.Context, o *order.Order) error {
		t.Fatal("order repository must not be called for an empty cart")
		return nil
	}}
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return cart.Cart{}, nil
	}}

	svc := newTestService(carts, orders, &mockProfiles{}, &mockNotifier{})

	result, err := svc.Submit(context.Background(), testUser(t), validInput())
	require.NoError(t, err)

	assert.Equal(t, checkout.StateFailed, result.State)
	assert.Empty(t, orders.created)
}

func TestSubmit_ValidationErrorsStayInValidating(t *testing.T) {
	c := testCart(t)
	orders := &mockOrders{createFunc: func(ctx context.Context, o *order.Order) error {
		t.Fatal("order repository must not be called on validation failure")
		return nil
	}}
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}

	svc := newTestService(carts, orders, &mockProfiles{}, &mockNotifier{})

	input := validInput()
	input.ShippingAddress.City = ""
	input.ShippingAddress.Phone = ""

	result, err := svc.Submit(context.Background(), testUser(t), input)
	require.NoError(t, err)

	assert.Equal(t, checkout.StateValidating, result.State)
	assert.Contains(t, result.FieldErrors, "city")
	assert.Contains(t, result.FieldErrors, "phone")
	assert.NotContains(t, result.FieldErrors, "first_name")
}

func TestSubmit_CreditCardIsDisabled(t *testing.T) {
	c := testCart(t)
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}

	svc := newTestService(carts, &mockOrders{}, &mockProfiles{}, &mockNotifier{})

	input := validInput()
	input.PaymentMethod = order.PaymentCreditCard

	result, err := svc.Submit(context.Background(), testUser(t), input)
	require.NoError(t, err)

	assert.Equal(t, checkout.StateValidating, result.State)
	assert.Contains(t, result.FieldErrors, "payment_method")
}

func TestSubmit_HappyPath(t *testing.T) {
	c := testCart(t)
	user := testUser(t)

	cleared := false
	orders := &mockOrders{}
	carts := &mockCarts{
		getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
			assert.Equal(t, user.ID.String(), cartID)
			return c, nil
		},
		clearFunc: func(ctx context.Context, cartID string) error {
			cleared = true
			return nil
		},
	}
	notifier := &mockNotifier{}

	svc := newTestService(carts, orders, &mockProfiles{}, notifier)

	result, err := svc.Submit(context.Background(), user, validInput())
	require.NoError(t, err)

	assert.Equal(t, checkout.StateSucceeded, result.State)
	assert.Empty(t, result.Warnings)
	require.NotNil(t, result.Order)

	require.Len(t, orders.created, 1)
	placed := orders.created[0]

	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, user.ID, placed.UserID)
	assert.Equal(t, c.TotalCents(), placed.TotalCents)
	assert.Equal(t, int64(13997), placed.TotalCents)
	require.Len(t, placed.Items, 2)
	assert.Equal(t, int64(7999), placed.Items[0].UnitPriceCents)
	assert.Equal(t, int64(2999), placed.Items[1].UnitPriceCents)
	assert.Equal(t, 2, placed.Items[1].Quantity)
	assert.Equal(t, "S", placed.Items[1].Size)

	assert.True(t, cleared, "cart must be cleared after a successful order")
	assert.Equal(t, 1, notifier.sent)
}

func TestSubmit_SavesAddressWhenRequested(t *testing.T) {
	c := testCart(t)
	profiles := &mockProfiles{}
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}

	svc := newTestService(carts, &mockOrders{}, profiles, &mockNotifier{})

	input := validInput()
	input.SaveAddress = true

	result, err := svc.Submit(context.Background(), testUser(t), input)
	require.NoError(t, err)
	require.Equal(t, checkout.StateSucceeded, result.State)

	require.Len(t, profiles.updates, 1)
	assert.Equal(t, "London", profiles.updates[0].City)
}

func TestSubmit_EmailFailureIsNonFatal(t *testing.T) {
	c := testCart(t)
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}
	notifier := &mockNotifier{sendFunc: func(ctx context.Context, o *order.Order, email string) error {
		return errors.New("smtp relay down")
	}}

	svc := newTestService(carts, &mockOrders{}, &mockProfiles{}, notifier)

	result, err := svc.Submit(context.Background(), testUser(t), validInput())
	require.NoError(t, err)

	assert.Equal(t, checkout.StateSucceeded, result.State)
	assert.Len(t, result.Warnings, 1)
}

func TestSubmit_OrderCreateFailure(t *testing.T) {
	c := testCart(t)
	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}
	orders := &mockOrders{createFunc: func(ctx context.Context, o *order.Order) error {
		return errors.New("insert failed")
	}}
	notifier := &mockNotifier{}

	svc := newTestService(carts, orders, &mockProfiles{}, notifier)

	result, err := svc.Submit(context.Background(), testUser(t), validInput())
	require.Error(t, err)

	assert.Equal(t, checkout.StateFailed, result.State)
	assert.Equal(t, 0, notifier.sent)
}

func TestSubmit_RejectsDuplicateInFlight(t *testing.T) {
	c := testCart(t)
	user := testUser(t)

	release := make(chan struct{})
	started := make(chan struct{})

	carts := &mockCarts{getFunc: func(ctx context.Context, cartID string) (cart.Cart, error) {
		return c, nil
	}}
	var startedOnce sync.Once
	notifier := &mockNotifier{sendFunc: func(ctx context.Context, o *order.Order, email string) error {
		startedOnce.Do(func() { close(started) })
		<-release
		return nil
	}}

	svc := newTestService(carts, &mockOrders{}, &mockProfiles{}, notifier)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), user, validInput())
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit never reached the notifier")
	}

	_, err := svc.Submit(context.Background(), user, validInput())
	assert.ErrorIs(t, err, checkout.ErrCheckoutInFlight)

	close(release)
	require.NoError(t, <-done)

	// Once the first attempt finishes, the guard is released.
	_, err = svc.Submit(context.Background(), user, validInput())
	assert.NoError(t, err)
}
