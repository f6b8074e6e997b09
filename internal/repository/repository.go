package repository

import (
	"context"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// ProductRepository defines catalog persistence operations. The catalog is
// written only by the seed CLI; the API reads it.
type ProductRepository interface {
	// Upsert inserts a product or updates it in place if the ID exists.
	Upsert(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its ID.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the filter with the total count.
	List(ctx context.Context, filter domain.ProductFilter, page pagination.Params) ([]domain.Product, int, error)
}

// CartRepository defines cart persistence operations.
type CartRepository interface {
	// Get retrieves a cart by its user ID.
	Get(ctx context.Context, userID string) (*domain.Cart, error)

	// SaveIfVersion persists the cart only if the stored version still equals
	// expectedVersion, incrementing the version on success. Returns false on
	// a version mismatch.
	SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error)

	// Delete removes a cart by the user ID.
	Delete(ctx context.Context, userID string) error
}

// AddressRepository defines address book persistence operations.
type AddressRepository interface {
	// Create inserts a new address. When makeDefault is set the insert and
	// the clearing of any previous default happen in one transaction.
	Create(ctx context.Context, a *domain.Address, makeDefault bool) error

	// GetByID retrieves an address by its ID.
	GetByID(ctx context.Context, id string) (*domain.Address, error)

	// GetDefault returns the user's default address, or ErrNotFound.
	GetDefault(ctx context.Context, userID string) (*domain.Address, error)

	// ListByUserID returns all addresses for the given user.
	ListByUserID(ctx context.Context, userID string) ([]domain.Address, error)

	// CountByUserID returns how many addresses the user has.
	CountByUserID(ctx context.Context, userID string) (int, error)

	// Update modifies an existing address.
	Update(ctx context.Context, a *domain.Address) error

	// Delete removes an address. If it was the default and other addresses
	// remain, the most recently created one is promoted in the same
	// transaction.
	Delete(ctx context.Context, userID, addressID string) error

	// SetDefault marks the given address as the user's default, unsetting
	// any previous default within a transaction.
	SetDefault(ctx context.Context, userID, addressID string) error
}

// OrderRepository defines order persistence operations.
type OrderRepository interface {
	// Create inserts an order and its items atomically.
	Create(ctx context.Context, o *domain.Order) error

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetByIdempotencyKey returns the order previously created for the
	// user with the given key, or ErrNotFound.
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error)

	// ListByUserID returns the user's orders matching the filter with the
	// total count.
	ListByUserID(ctx context.Context, userID string, filter domain.OrderFilter, page pagination.Params) ([]domain.Order, int, error)

	// UpdateStatus persists a status change and optional cancel reason.
	UpdateStatus(ctx context.Context, id, status, cancelReason string) error
}

// UserRepository defines user account persistence operations.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by their ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update modifies an existing user.
	Update(ctx context.Context, u *domain.User) error
}

// TestimonialRepository defines testimonial persistence operations.
type TestimonialRepository interface {
	// Create inserts a new testimonial (unapproved).
	Create(ctx context.Context, t *domain.Testimonial) error

	// ListApproved returns approved testimonials, newest first.
	ListApproved(ctx context.Context, page pagination.Params) ([]domain.Testimonial, int, error)

	// Approve marks a testimonial as approved.
	Approve(ctx context.Context, id string) error
}
