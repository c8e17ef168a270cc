package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lynixdevs/urbanthreads/internal/notify"
	"github.com/lynixdevs/urbanthreads/internal/order"
)

func testOrder(t *testing.T) *order.Order {
	t.Helper()

	id, err := uuid.NewV4()
	require.NoError(t, err)

	return &order.Order{
		ID:         id,
		Status:     order.StatusPending,
		TotalCents: 13997,
	}
}

func TestSendOrderConfirmation(t *testing.T) {
	var gotBody map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := notify.NewClient(server.URL, time.Second)

	err := client.SendOrderConfirmation(context.Background(), testOrder(t), "shopper@example.com")
	require.NoError(t, err)

	assert.Contains(t, gotBody, "orderDetails")
	assert.Contains(t, gotBody, "customerEmail")
}

func TestSendOrderConfirmation_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http_error_status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "endpoint_reports_failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"success":false,"error":"quota exceeded"}`))
			},
		},
		{
			name: "garbage_response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := notify.NewClient(server.URL, time.Second)
			err := client.SendOrderConfirmation(context.Background(), testOrder(t), "shopper@example.com")
			assert.Error(t, err)
		})
	}
}

func TestSendOrderConfirmation_NoEndpoint(t *testing.T) {
	client := notify.NewClient("", time.Second)
	err := client.SendOrderConfirmation(context.Background(), testOrder(t), "shopper@example.com")
	assert.Error(t, err)
}
