package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/event"
	"github.com/ronjeternate/BizarreAdventure/internal/notifier"
	"github.com/ronjeternate/BizarreAdventure/internal/pricing"
	"github.com/ronjeternate/BizarreAdventure/internal/repository"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

// PlaceOrderInput holds the parameters for placing an order from the cart.
type PlaceOrderInput struct {
	LineIDs        []string `json:"line_ids" validate:"required,min=1"`
	IdempotencyKey string   `json:"idempotency_key"`
}

// CheckoutService turns a cart selection into an order.
type CheckoutService struct {
	orders    repository.OrderRepository
	carts     repository.CartRepository
	addresses repository.AddressRepository
	users     repository.UserRepository
	producer  *event.Producer
	notifier  notifier.Notifier
	logger    *slog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orders repository.OrderRepository,
	carts repository.CartRepository,
	addresses repository.AddressRepository,
	users repository.UserRepository,
	producer *event.Producer,
	notifier notifier.Notifier,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		carts:     carts,
		addresses: addresses,
		users:     users,
		producer:  producer,
		notifier:  notifier,
		logger:    logger,
	}
}

// PlaceOrder creates an order from the selected cart lines. Prices are
// re-resolved from the price table at placement, the flat shipping fee is
// added on top of the subtotal, and the delivery address is snapshotted
// from the user's default address. The purchased lines are removed from
// the cart after the order commits; unselected lines stay.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (*domain.Order, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if len(input.LineIDs) == 0 {
		return nil, apperrors.EmptySelection()
	}

	// A replayed idempotency key returns the order it originally created.
	if input.IdempotencyKey != "" {
		existing, err := s.orders.GetByIdempotencyKey(ctx, userID, input.IdempotencyKey)
		if err == nil {
			s.logger.InfoContext(ctx, "order replayed from idempotency key",
				slog.String("user_id", userID),
				slog.String("order_id", existing.ID),
			)
			return existing, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.EmptySelection()
		}
		return nil, fmt.Errorf("get cart for checkout: %w", err)
	}

	selected := make([]domain.CartLine, 0, len(input.LineIDs))
	for _, lineID := range input.LineIDs {
		if idx := cart.FindLineByID(lineID); idx >= 0 {
			selected = append(selected, cart.Lines[idx])
		}
	}
	if len(selected) == 0 {
		return nil, apperrors.EmptySelection()
	}

	address, err := s.addresses.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NoDefaultAddress()
		}
		return nil, fmt.Errorf("get default address: %w", err)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		Status:        domain.OrderStatusPending,
		Items:         make([]domain.OrderItem, len(selected)),
		ShippingFee:   domain.ShippingFee,
		CustomerName:  address.FullName,
		CustomerPhone: address.PhoneNumber,
		Address: domain.OrderAddress{
			Region:         address.Region,
			PostalCode:     address.PostalCode,
			Street:         address.Street,
			AdditionalInfo: address.AdditionalInfo,
		},
		IdempotencyKey: input.IdempotencyKey,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Unit prices come from the price table, not the cart snapshot, so a
	// stale cart can never buy at an outdated price.
	var subtotal int64
	for i, line := range selected {
		unitPrice, err := pricing.Resolve(line.Size, line.Gender)
		if err != nil {
			return nil, err
		}
		item := domain.OrderItem{
			ID:         uuid.New().String(),
			ProductID:  line.ProductID,
			Name:       line.Name,
			Gender:     line.Gender,
			Size:       line.Size,
			UnitPrice:  unitPrice,
			Quantity:   line.Quantity,
			TotalPrice: unitPrice * int64(line.Quantity),
			ImageURL:   line.ImageURL,
		}
		subtotal += item.TotalPrice
		order.Items[i] = item
	}
	order.Subtotal = subtotal
	order.Total = subtotal + order.ShippingFee

	if err := s.orders.Create(ctx, order); err != nil {
		// A concurrent request with the same key won the race; return its order.
		if input.IdempotencyKey != "" && errors.Is(err, apperrors.ErrAlreadyExists) {
			existing, lookupErr := s.orders.GetByIdempotencyKey(ctx, userID, input.IdempotencyKey)
			if lookupErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	// The order is committed; cart cleanup and notifications are best effort.
	s.removePurchasedLines(ctx, cart, input.LineIDs)

	if err := s.producer.PublishOrderCreated(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.created event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	if user, userErr := s.users.GetByID(ctx, userID); userErr != nil {
		s.logger.ErrorContext(ctx, "failed to load user for order confirmation",
			slog.String("order_id", order.ID),
			slog.String("error", userErr.Error()),
		)
	} else if err := s.notifier.SendOrderConfirmation(ctx, user.Email, user.FullName, order.ID, order.Status); err != nil {
		s.logger.ErrorContext(ctx, "failed to send order confirmation",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int("items", len(order.Items)),
		slog.Int64("total", order.Total),
	)

	return order, nil
}

// removePurchasedLines drops the purchased lines from the cart. The order is
// already committed, so failures here are logged and swallowed; the cart will
// simply still show the lines.
func (s *CheckoutService) removePurchasedLines(ctx context.Context, cart *domain.Cart, lineIDs []string) {
	remove := make(map[string]struct{}, len(lineIDs))
	for _, id := range lineIDs {
		remove[id] = struct{}{}
	}

	expectedVersion := cart.Version
	kept := make([]domain.CartLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if _, ok := remove[line.ID]; !ok {
			kept = append(kept, line)
		}
	}
	cart.Lines = kept
	cart.UpdatedAt = time.Now().UTC()

	ok, err := s.carts.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to remove purchased lines from cart",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
		return
	}
	if !ok {
		s.logger.WarnContext(ctx, "cart changed during checkout, purchased lines not removed",
			slog.String("user_id", cart.UserID),
		)
	}
}
