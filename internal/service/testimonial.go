package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/repository"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// Testimonial content limits.
const (
	MaxTestimonialLength = 1000
	MinRating            = 1
	MaxRating            = 5
)

// SubmitTestimonialInput holds the parameters for submitting a testimonial.
type SubmitTestimonialInput struct {
	Message string `json:"message" validate:"required,max=1000"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// TestimonialService manages customer testimonials. Submissions are held
// until an admin approves them; only approved ones are listed publicly.
type TestimonialService struct {
	repo   repository.TestimonialRepository
	users  repository.UserRepository
	logger *slog.Logger
}

// NewTestimonialService creates a new testimonial service.
func NewTestimonialService(repo repository.TestimonialRepository, users repository.UserRepository, logger *slog.Logger) *TestimonialService {
	return &TestimonialService{
		repo:   repo,
		users:  users,
		logger: logger,
	}
}

// SubmitTestimonial records an unapproved testimonial from the user.
func (s *TestimonialService) SubmitTestimonial(ctx context.Context, userID string, input SubmitTestimonialInput) (*domain.Testimonial, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.InvalidInput("message is required")
	}
	if len(message) > MaxTestimonialLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("message must not exceed %d characters", MaxTestimonialLength))
	}
	if input.Rating < MinRating || input.Rating > MaxRating {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user for testimonial: %w", err)
	}

	testimonial := &domain.Testimonial{
		ID:         uuid.New().String(),
		UserID:     userID,
		AuthorName: user.FullName,
		Message:    message,
		Rating:     input.Rating,
		Approved:   false,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, testimonial); err != nil {
		return nil, fmt.Errorf("create testimonial: %w", err)
	}

	s.logger.InfoContext(ctx, "testimonial submitted",
		slog.String("testimonial_id", testimonial.ID),
		slog.String("user_id", userID),
		slog.Int("rating", input.Rating),
	)

	return testimonial, nil
}

// ListTestimonials returns approved testimonials, newest first.
func (s *TestimonialService) ListTestimonials(ctx context.Context, page pagination.Params) ([]domain.Testimonial, int, error) {
	testimonials, total, err := s.repo.ListApproved(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list testimonials: %w", err)
	}
	return testimonials, total, nil
}

// ApproveTestimonial publishes a testimonial. Admin operation.
func (s *TestimonialService) ApproveTestimonial(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("testimonial id is required")
	}

	if err := s.repo.Approve(ctx, id); err != nil {
		return fmt.Errorf("approve testimonial: %w", err)
	}

	s.logger.InfoContext(ctx, "testimonial approved",
		slog.String("testimonial_id", id),
	)

	return nil
}
