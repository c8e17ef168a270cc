// Package notify talks to the external order-confirmation endpoint. Callers
// treat every failure as non-fatal: a lost email never blocks an order.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lynixdevs/urbanthreads/internal/order"
)

type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type confirmationRequest struct {
	OrderDetails  *order.Order `json:"orderDetails"`
	CustomerEmail string       `json:"customerEmail"`
}

type confirmationResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// SendOrderConfirmation posts the order summary to the notification
// endpoint.
func (c *Client) SendOrderConfirmation(ctx context.Context, o *order.Order, customerEmail string) error {
	if c.endpoint == "" {
		return fmt.Errorf("notify: no endpoint configured")
	}

	body, err := json.Marshal(confirmationRequest{OrderDetails: o, CustomerEmail: customerEmail})
	if err != nil {
		return fmt.Errorf("notify: failed to marshal confirmation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: failed to build confirmation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: failed to send confirmation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("notify: confirmation endpoint returned status %d", resp.StatusCode)
	}

	var parsed confirmationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("notify: failed to decode confirmation response: %w", err)
	}
	if !parsed.Success {
		return fmt.Errorf("notify: confirmation endpoint reported failure: %s", parsed.Error)
	}

	return nil
}
