package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ronjeternate/BizarreAdventure/pkg/httpclient"
)

// Notifier sends transactional email through the relay service.
// Implementations are expected to be best-effort: callers log failures
// and never fail the triggering operation.
type Notifier interface {
	SendWelcome(ctx context.Context, email, name string) error
	SendOrderConfirmation(ctx context.Context, email, name, orderID, status string) error
	SendOrderUpdate(ctx context.Context, email, name, orderID, status string) error
}

// HTTPDoer is the interface for executing HTTP requests.
// Both httpclient.Client and httpclient.CircuitBreakerClient satisfy this.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// EmailRelay is a Notifier backed by the HTTP email relay service.
type EmailRelay struct {
	client  HTTPDoer
	baseURL string
	logger  *slog.Logger
}

// NewEmailRelay creates a notifier that posts to the email relay at baseURL.
func NewEmailRelay(client HTTPDoer, baseURL string, logger *slog.Logger) *EmailRelay {
	return &EmailRelay{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SendWelcome sends the account welcome email.
func (r *EmailRelay) SendWelcome(ctx context.Context, email, name string) error {
	payload := struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}{
		Email: email,
		Name:  name,
	}

	if err := r.post(ctx, "/send-email", payload); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "welcome email dispatched",
		slog.String("email", email),
	)

	return nil
}

// SendOrderConfirmation sends the order placed email.
func (r *EmailRelay) SendOrderConfirmation(ctx context.Context, email, name, orderID, status string) error {
	payload := struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}{
		Email:   email,
		Name:    name,
		OrderID: orderID,
		Status:  status,
	}

	if err := r.post(ctx, "/send-order-confirmation", payload); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "order confirmation email dispatched",
		slog.String("email", email),
		slog.String("order_id", orderID),
	)

	return nil
}

// SendOrderUpdate sends the order status change email.
func (r *EmailRelay) SendOrderUpdate(ctx context.Context, email, name, orderID, status string) error {
	payload := struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}{
		Email:   email,
		Name:    name,
		OrderID: orderID,
		Status:  status,
	}

	if err := r.post(ctx, "/send-order-update", payload); err != nil {
		return err
	}

	r.logger.InfoContext(ctx, "order update email dispatched",
		slog.String("email", email),
		slog.String("order_id", orderID),
		slog.String("status", status),
	)

	return nil
}

func (r *EmailRelay) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal relay payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("call email relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return httpclient.ParseResponseError(resp, "email-relay")
	}

	return nil
}
