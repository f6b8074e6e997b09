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
	"github.com/ronjeternate/BizarreAdventure/internal/pricing"
	"github.com/ronjeternate/BizarreAdventure/internal/repository"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerLine is the maximum quantity allowed for a single cart line.
	MaxQuantityPerLine = 100
	// MaxLinesPerCart is the maximum number of distinct lines allowed in a cart.
	MaxLinesPerCart = 50
)

// AddLineInput holds the parameters for adding a product to the cart.
type AddLineInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityInput holds the parameters for updating a line quantity.
type UpdateQuantityInput struct {
	Quantity int `json:"quantity" validate:"gte=0"`
}

// CartService implements the business logic for cart operations.
type CartService struct {
	repo     repository.CartRepository
	products repository.ProductRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(repo repository.CartRepository, products repository.ProductRepository, producer *event.Producer, logger *slog.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		producer: producer,
		logger:   logger,
	}
}

// GetCart retrieves the cart for a user. If no cart exists, returns an empty cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return cart, nil
}

// AddLine puts a product and size into the user's cart. If the same
// product+size line exists it merges by increasing quantity, keeping the
// unit price the line was first added at. Uses optimistic locking to
// prevent lost updates on concurrent cart modifications.
func (s *CartService) AddLine(ctx context.Context, userID string, input AddLineInput) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if input.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if !domain.IsValidVolume(input.Size) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("size must be %s or %s", domain.Volume30ml, domain.Volume65ml))
	}
	if input.Quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if input.Quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for cart: %w", err)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	expectedVersion := cart.Version

	if idx := cart.FindLineIndex(input.ProductID, input.Size); idx >= 0 {
		line := &cart.Lines[idx]
		newQty := line.Quantity + input.Quantity
		if newQty > MaxQuantityPerLine {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerLine))
		}
		line.Quantity = newQty
		line.Recalculate()
	} else {
		if len(cart.Lines) >= MaxLinesPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d lines", MaxLinesPerCart))
		}

		unitPrice, err := pricing.Resolve(input.Size, product.Gender)
		if err != nil {
			return nil, err
		}

		line := domain.CartLine{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			Name:      product.Name,
			Gender:    product.Gender,
			Size:      input.Size,
			UnitPrice: unitPrice,
			Quantity:  input.Quantity,
			ImageURL:  product.ImageURL,
		}
		line.Recalculate()
		cart.Lines = append(cart.Lines, line)
	}

	cart.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "line added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", input.ProductID),
		slog.String("size", input.Size),
		slog.Int("quantity", input.Quantity),
	)

	return cart, nil
}

// UpdateLineQuantity changes the quantity of a cart line. A quantity of 0
// removes the line. Uses optimistic locking to prevent lost updates on
// concurrent cart modifications.
func (s *CartService) UpdateLineQuantity(ctx context.Context, userID, lineID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}
	if quantity > MaxQuantityPerLine {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerLine))
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for update: %w", err)
	}

	expectedVersion := cart.Version

	idx := cart.FindLineByID(lineID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", lineID)
	}

	if quantity == 0 {
		cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)
	} else {
		cart.Lines[idx].Quantity = quantity
		cart.Lines[idx].Recalculate()
	}

	cart.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart line quantity updated",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
		slog.Int("quantity", quantity),
	)

	return cart, nil
}

// RemoveLine removes a single line from the cart.
// Uses optimistic locking to prevent lost updates on concurrent cart modifications.
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if lineID == "" {
		return nil, apperrors.InvalidInput("line id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	expectedVersion := cart.Version

	idx := cart.FindLineByID(lineID)
	if idx < 0 {
		return nil, apperrors.NotFound("cart line", lineID)
	}
	cart.Lines = append(cart.Lines[:idx], cart.Lines[idx+1:]...)

	cart.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "line removed from cart",
		slog.String("user_id", userID),
		slog.String("line_id", lineID),
	)

	return cart, nil
}

// RemoveLines removes the given line IDs from the cart in one save. Line IDs
// not present in the cart are ignored. Used after checkout to clear the
// purchased selection while leaving the rest of the cart intact.
func (s *CartService) RemoveLines(ctx context.Context, userID string, lineIDs []string) (*domain.Cart, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if len(lineIDs) == 0 {
		return nil, apperrors.InvalidInput("at least one line id is required")
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	expectedVersion := cart.Version

	remove := make(map[string]struct{}, len(lineIDs))
	for _, id := range lineIDs {
		remove[id] = struct{}{}
	}

	kept := cart.Lines[:0]
	for _, line := range cart.Lines {
		if _, ok := remove[line.ID]; !ok {
			kept = append(kept, line)
		}
	}
	cart.Lines = kept

	cart.UpdatedAt = time.Now().UTC()

	ok, err := s.repo.SaveIfVersion(ctx, cart, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	if !ok {
		return nil, apperrors.Conflict("cart was modified concurrently, please retry")
	}

	if err := s.producer.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "lines removed from cart",
		slog.String("user_id", userID),
		slog.Int("removed", len(lineIDs)),
	)

	return cart, nil
}

// ClearCart removes the user's cart entirely.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// getOrCreateCart retrieves the cart for a user, creating an empty one if it does not exist.
func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// newEmptyCart creates a new empty cart for the given user.
func newEmptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		UserID:    userID,
		Lines:     []domain.CartLine{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
