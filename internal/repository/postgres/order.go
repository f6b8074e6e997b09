package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/pkg/database"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts a new order and its items atomically within a transaction.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	addressJSON, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("marshal order address: %w", err)
	}

	orderQuery := `
		INSERT INTO orders (id, user_id, status, subtotal, shipping_fee, total, customer_name, customer_phone, address, cancel_reason, idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.Status,
		o.Subtotal,
		o.ShippingFee,
		o.Total,
		o.CustomerName,
		o.CustomerPhone,
		addressJSON,
		o.CancelReason,
		nullableKey(o.IdempotencyKey),
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("order", "idempotency_key", o.IdempotencyKey)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, name, gender, size, unit_price, quantity, total_price, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			o.ID,
			item.ProductID,
			item.Name,
			item.Gender,
			item.Size,
			item.UnitPrice,
			item.Quantity,
			item.TotalPrice,
			item.ImageURL,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// orderSelect fetches an order and its items in one query via JSONB_AGG,
// avoiding the N+1 of a per-order item query.
const orderSelect = `
	SELECT
		o.id, o.user_id, o.status, o.subtotal, o.shipping_fee, o.total,
		o.customer_name, o.customer_phone, o.address, o.cancel_reason,
		o.created_at, o.updated_at,
		COALESCE(
			JSONB_AGG(
				JSONB_BUILD_OBJECT(
					'id', oi.id,
					'product_id', oi.product_id,
					'name', oi.name,
					'gender', oi.gender,
					'size', oi.size,
					'unit_price', oi.unit_price,
					'quantity', oi.quantity,
					'total_price', oi.total_price,
					'image_url', oi.image_url
				) ORDER BY oi.id
			) FILTER (WHERE oi.id IS NOT NULL),
			'[]'::jsonb
		) AS items
	FROM orders o
	LEFT JOIN order_items oi ON o.id = oi.order_id`

const orderGroupBy = `
	GROUP BY o.id, o.user_id, o.status, o.subtotal, o.shipping_fee, o.total,
		o.customer_name, o.customer_phone, o.address, o.cancel_reason,
		o.created_at, o.updated_at`

// GetByID retrieves an order by its ID, eagerly loading its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := orderSelect + ` WHERE o.id = $1` + orderGroupBy
	return r.scanOrder(ctx, query, id)
}

// GetByIdempotencyKey returns the order previously created for the user with
// the given key.
func (r *OrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	query := orderSelect + ` WHERE o.user_id = $1 AND o.idempotency_key = $2` + orderGroupBy
	return r.scanOrder(ctx, query, userID, key)
}

func (r *OrderRepository) scanOrder(ctx context.Context, query string, args ...any) (*domain.Order, error) {
	var (
		o           domain.Order
		addressJSON []byte
		itemsJSON   []byte
	)

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&o.ID,
		&o.UserID,
		&o.Status,
		&o.Subtotal,
		&o.ShippingFee,
		&o.Total,
		&o.CustomerName,
		&o.CustomerPhone,
		&addressJSON,
		&o.CancelReason,
		&o.CreatedAt,
		&o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
		return nil, fmt.Errorf("unmarshal order address: %w", err)
	}

	if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
	}
	if o.Items == nil {
		o.Items = []domain.OrderItem{}
	}

	return &o, nil
}

// ListByUserID returns the user's orders matching the filter with the total
// count. The gender filter matches orders containing at least one item of
// that gender.
func (r *OrderRepository) ListByUserID(ctx context.Context, userID string, filter domain.OrderFilter, page pagination.Params) ([]domain.Order, int, error) {
	conditions := []string{"o.user_id = $1"}
	args := []any{userID}
	argIndex := 2

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Gender != "" {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM order_items g WHERE g.order_id = o.id AND g.gender = $%d)", argIndex))
		args = append(args, filter.Gender)
		argIndex++
	}

	query := fmt.Sprintf(`%s
		WHERE %s
		%s
		ORDER BY o.created_at DESC
		LIMIT $%d OFFSET $%d`,
		orderSelect, strings.Join(conditions, " AND "), orderGroupBy, argIndex, argIndex+1,
	)

	args = append(args, page.PerPage, page.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		var (
			o           domain.Order
			addressJSON []byte
			itemsJSON   []byte
		)
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.Status,
			&o.Subtotal,
			&o.ShippingFee,
			&o.Total,
			&o.CustomerName,
			&o.CustomerPhone,
			&addressJSON,
			&o.CancelReason,
			&o.CreatedAt,
			&o.UpdatedAt,
			&itemsJSON,
		); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := json.Unmarshal(addressJSON, &o.Address); err != nil {
			return nil, 0, fmt.Errorf("unmarshal order address: %w", err)
		}
		if len(itemsJSON) > 0 && string(itemsJSON) != "null" {
			if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
				return nil, 0, fmt.Errorf("unmarshal order items: %w", err)
			}
		}
		if o.Items == nil {
			o.Items = []domain.OrderItem{}
		}

		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	// Separate count query: the window-function shortcut does not compose
	// with the GROUP BY above.
	countQuery := fmt.Sprintf(
		`SELECT COUNT(*) FROM orders o WHERE %s`,
		strings.Join(conditions, " AND "),
	)

	var totalCount int
	if err := r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	return orders, totalCount, nil
}

// UpdateStatus persists a status change and optional cancel reason.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id, status, cancelReason string) error {
	query := `
		UPDATE orders
		SET status = $1, cancel_reason = $2, updated_at = NOW()
		WHERE id = $3`

	ct, err := r.pool.Exec(ctx, query, status, cancelReason, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}

	return nil
}

// nullableKey converts an empty string to NULL so the partial unique index on
// idempotency_key ignores orders placed without one.
func nullableKey(key string) any {
	if key == "" {
		return nil
	}
	return key
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}
