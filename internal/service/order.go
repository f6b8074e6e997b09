package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/event"
	"github.com/ronjeternate/BizarreAdventure/internal/notifier"
	"github.com/ronjeternate/BizarreAdventure/internal/repository"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// OrderService implements order tracking, cancellation, and fulfillment
// status updates.
type OrderService struct {
	repo     repository.OrderRepository
	users    repository.UserRepository
	producer *event.Producer
	notifier notifier.Notifier
	logger   *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	repo repository.OrderRepository,
	users repository.UserRepository,
	producer *event.Producer,
	notifier notifier.Notifier,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		repo:     repo,
		users:    users,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// ListOrders returns the user's orders, optionally narrowed by status and by
// the gender of the perfumes they contain.
func (s *OrderService) ListOrders(ctx context.Context, userID string, filter domain.OrderFilter, page pagination.Params) ([]domain.Order, int, error) {
	if userID == "" {
		return nil, 0, apperrors.InvalidInput("user id is required")
	}
	if filter.Status != "" && !domain.IsValidOrderStatus(filter.Status) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", filter.Status))
	}
	if filter.Gender != "" && !domain.IsValidGender(filter.Gender) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid gender %q", filter.Gender))
	}

	orders, total, err := s.repo.ListByUserID(ctx, userID, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	return orders, total, nil
}

// GetOrder retrieves one of the user's orders. Requesting another user's
// order returns not found rather than forbidden, so order IDs cannot be
// enumerated.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.UserID != userID {
		return nil, apperrors.NotFound("order", orderID)
	}

	return order, nil
}

// CancelOrder cancels one of the user's orders with a required reason.
// Orders can only be cancelled before they ship.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID, reason string) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.InvalidReason()
	}

	order, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(domain.OrderStatusCancelled) {
		return nil, apperrors.Conflict(fmt.Sprintf("order in status %q cannot be cancelled", order.Status))
	}

	oldStatus := order.Status
	if err := s.repo.UpdateStatus(ctx, orderID, domain.OrderStatusCancelled, reason); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	order.Status = domain.OrderStatusCancelled
	order.CancelReason = reason

	if err := s.producer.PublishOrderCanceled(ctx, order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.canceled event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.notifyStatusChange(ctx, order)

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", orderID),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)

	return order, nil
}

// UpdateStatus moves an order through the fulfillment flow. This is an
// admin operation and is not scoped to the order's owner.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, status string) (*domain.Order, error) {
	if orderID == "" {
		return nil, apperrors.InvalidInput("order id is required")
	}
	if !domain.IsValidOrderStatus(status) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid status %q", status))
	}
	if status == domain.OrderStatusCancelled {
		return nil, apperrors.InvalidInput("use the cancel operation to cancel an order")
	}

	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	if !order.CanTransitionTo(status) {
		return nil, apperrors.Conflict(fmt.Sprintf("order cannot move from %q to %q", order.Status, status))
	}

	oldStatus := order.Status
	if err := s.repo.UpdateStatus(ctx, orderID, status, ""); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	order.Status = status

	if err := s.producer.PublishOrderStatusChanged(ctx, order, oldStatus); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.status_changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.notifyStatusChange(ctx, order)

	s.logger.InfoContext(ctx, "order status updated",
		slog.String("order_id", orderID),
		slog.String("from", oldStatus),
		slog.String("to", status),
	)

	return order, nil
}

// notifyStatusChange emails the order's owner about the new status. Best
// effort: failures are logged and never surfaced to the caller.
func (s *OrderService) notifyStatusChange(ctx context.Context, order *domain.Order) {
	user, err := s.users.GetByID(ctx, order.UserID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load user for order update email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := s.notifier.SendOrderUpdate(ctx, user.Email, user.FullName, order.ID, order.Status); err != nil {
		s.logger.ErrorContext(ctx, "failed to send order update email",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
