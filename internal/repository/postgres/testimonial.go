package postgres

import (
	"context"
	"fmt"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/pkg/database"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// TestimonialRepository implements repository.TestimonialRepository using PostgreSQL.
type TestimonialRepository struct {
	pool database.DBTX
}

// NewTestimonialRepository creates a new PostgreSQL-backed testimonial repository.
func NewTestimonialRepository(pool database.DBTX) *TestimonialRepository {
	return &TestimonialRepository{pool: pool}
}

// Create inserts a new testimonial.
func (r *TestimonialRepository) Create(ctx context.Context, t *domain.Testimonial) error {
	query := `
		INSERT INTO testimonials (id, user_id, author_name, message, rating, approved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		t.ID,
		t.UserID,
		t.AuthorName,
		t.Message,
		t.Rating,
		t.Approved,
		t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}

	return nil
}

// ListApproved returns approved testimonials, newest first, with the total count.
func (r *TestimonialRepository) ListApproved(ctx context.Context, page pagination.Params) ([]domain.Testimonial, int, error) {
	query := `
		SELECT id, user_id, author_name, message, rating, approved, created_at,
		       count(*) OVER() AS total_count
		FROM testimonials
		WHERE approved = true
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, page.PerPage, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list testimonials: %w", err)
	}
	defer rows.Close()

	var totalCount int
	testimonials := make([]domain.Testimonial, 0)

	for rows.Next() {
		var t domain.Testimonial
		if err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.AuthorName,
			&t.Message,
			&t.Rating,
			&t.Approved,
			&t.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan testimonial row: %w", err)
		}
		testimonials = append(testimonials, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate testimonial rows: %w", err)
	}

	return testimonials, totalCount, nil
}

// Approve marks a testimonial as approved.
func (r *TestimonialRepository) Approve(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE testimonials SET approved = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("approve testimonial: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("testimonial", id)
	}

	return nil
}
