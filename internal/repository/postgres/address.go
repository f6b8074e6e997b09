package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/pkg/database"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

const addressColumns = "id, user_id, full_name, phone_number, region, postal_code, street, additional_info, is_default, created_at, updated_at"

// AddressRepository implements repository.AddressRepository using PostgreSQL.
type AddressRepository struct {
	pool database.DBTX
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool database.DBTX) *AddressRepository {
	return &AddressRepository{pool: pool}
}

// Create inserts a new address. When makeDefault is set, any previous default
// for the user is cleared in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address, makeDefault bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if makeDefault {
		_, err = tx.Exec(ctx,
			`UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
			a.UserID,
		)
		if err != nil {
			return fmt.Errorf("unset default address: %w", err)
		}
		a.IsDefault = true
	}

	query := `
		INSERT INTO addresses (` + addressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.FullName,
		a.PhoneNumber,
		a.Region,
		a.PostalCode,
		a.Street,
		a.AdditionalInfo,
		a.IsDefault,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert address: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an address by its ID.
func (r *AddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`
	return r.scanAddress(ctx, query, id)
}

// GetDefault returns the user's default address.
func (r *AddressRepository) GetDefault(ctx context.Context, userID string) (*domain.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 AND is_default = true`
	return r.scanAddress(ctx, query, userID)
}

// ListByUserID returns all addresses for the given user, default first.
func (r *AddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]domain.Address, 0)
	for rows.Next() {
		var a domain.Address
		if err := scanAddressRow(rows, &a); err != nil {
			return nil, fmt.Errorf("scan address row: %w", err)
		}
		addresses = append(addresses, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate address rows: %w", err)
	}

	return addresses, nil
}

// CountByUserID returns how many addresses the user has.
func (r *AddressRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM addresses WHERE user_id = $1`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count addresses: %w", err)
	}
	return count, nil
}

// Update modifies an existing address. Ownership is enforced in the WHERE
// clause so one user cannot edit another's address.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	a.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE addresses
		SET full_name = $1, phone_number = $2, region = $3, postal_code = $4,
		    street = $5, additional_info = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9`

	ct, err := r.pool.Exec(ctx, query,
		a.FullName,
		a.PhoneNumber,
		a.Region,
		a.PostalCode,
		a.Street,
		a.AdditionalInfo,
		a.UpdatedAt,
		a.ID,
		a.UserID,
	)
	if err != nil {
		return fmt.Errorf("update address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", a.ID)
	}

	return nil
}

// Delete removes an address. If the removed address was the default and the
// user still has others, the most recently created one is promoted to default
// within the same transaction.
func (r *AddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var wasDefault bool
	err = tx.QueryRow(ctx,
		`DELETE FROM addresses WHERE id = $1 AND user_id = $2 RETURNING is_default`,
		addressID, userID,
	).Scan(&wasDefault)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NotFound("address", addressID)
		}
		return fmt.Errorf("delete address: %w", err)
	}

	if wasDefault {
		_, err = tx.Exec(ctx, `
			UPDATE addresses SET is_default = true
			WHERE id = (
				SELECT id FROM addresses
				WHERE user_id = $1
				ORDER BY created_at DESC
				LIMIT 1
			)`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("promote replacement default: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// SetDefault marks the specified address as the default for the user,
// unsetting any previous default within a transaction.
func (r *AddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`UPDATE addresses SET is_default = false WHERE user_id = $1 AND is_default = true`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("unset default address: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`UPDATE addresses SET is_default = true WHERE id = $1 AND user_id = $2`,
		addressID, userID,
	)
	if err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("address", addressID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

func (r *AddressRepository) scanAddress(ctx context.Context, query string, args ...any) (*domain.Address, error) {
	var a domain.Address
	err := scanAddressRow(r.pool.QueryRow(ctx, query, args...), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan address: %w", err)
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAddressRow(row rowScanner, a *domain.Address) error {
	return row.Scan(
		&a.ID,
		&a.UserID,
		&a.FullName,
		&a.PhoneNumber,
		&a.Region,
		&a.PostalCode,
		&a.Street,
		&a.AdditionalInfo,
		&a.IsDefault,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}
