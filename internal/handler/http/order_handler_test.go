package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lynixdevs/urbanthreads/internal/order"
)

type mockOrderService struct {
	listOrdersFunc     func(ctx context.Context, params order.AdminListParams) ([]order.Summary, error)
	getOrderFunc       func(ctx context.Context, id uuid.UUID) (*order.Summary, error)
	listUserOrdersFunc func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatusFunc   func(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error
}

func (m *mockOrderService) ListOrders(ctx context.Context, params order.AdminListParams) ([]order.Summary, error) {
	return m.listOrdersFunc(ctx, params)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*order.Summary, error) {
	return m.getOrderFunc(ctx, id)
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return m.listUserOrdersFunc(ctx, userID)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) error {
	return m.updateStatusFunc(ctx, orderID, newStatus)
}

func adminRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	NewOrderHandler(svc).RegisterAdminRoutes(r)
	return r
}

func TestOrderHandler_AdminUpdateStatus(t *testing.T) {
	orderID := "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name           string
		url            string
		body           string
		updateStatus   func(ctx context.Context, id uuid.UUID, newStatus order.Status) error
		expectedStatus int
	}{
		{
			name: "success",
			url:  "/orders/" + orderID + "/status",
			body: `{"status":"processing"}`,
			updateStatus: func(ctx context.Context, id uuid.UUID, newStatus order.Status) error {
				assert.Equal(t, orderID, id.String())
				assert.Equal(t, order.StatusProcessing, newStatus)
				return nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/orders/" + orderID + "/status",
			body: `{"status":"processing"}`,
			updateStatus: func(ctx context.Context, id uuid.UUID, newStatus order.Status) error {
				return order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "invalid_transition",
			url:  "/orders/" + orderID + "/status",
			body: `{"status":"pending"}`,
			updateStatus: func(ctx context.Context, id uuid.UUID, newStatus order.Status) error {
				return order.ErrInvalidStatusTransition
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad_order_id",
			url:            "/orders/not-a-uuid/status",
			body:           `{"status":"processing"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad_payload",
			url:            "/orders/" + orderID + "/status",
			body:           `{`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := adminRouter(&mockOrderService{updateStatusFunc: tt.updateStatus})

			req := httptest.NewRequest(http.MethodPatch, tt.url, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestOrderHandler_AdminListOrders(t *testing.T) {
	var gotParams order.AdminListParams
	svc := &mockOrderService{
		listOrdersFunc: func(ctx context.Context, params order.AdminListParams) ([]order.Summary, error) {
			gotParams = params
			return []order.Summary{}, nil
		},
	}

	router := adminRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/orders?status=pending&q=alice&limit=25", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotParams.Status)
	assert.Equal(t, order.StatusPending, *gotParams.Status)
	assert.Equal(t, "alice", gotParams.Search)
	assert.Equal(t, 25, gotParams.Limit)
}

func TestOrderHandler_AdminListOrdersRejectsBadStatus(t *testing.T) {
	router := adminRouter(&mockOrderService{
		listOrdersFunc: func(ctx context.Context, params order.AdminListParams) ([]order.Summary, error) {
			t.Fatal("service must not be called with an invalid status")
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders?status=shipped", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
