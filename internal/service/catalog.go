package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/repository"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// CatalogService serves the perfume catalog. The catalog is read-only from
// the API; the seed CLI writes it.
type CatalogService struct {
	repo   repository.ProductRepository
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(repo repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts returns catalog products matching the filter.
func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter, page pagination.Params) ([]domain.Product, int, error) {
	if filter.Gender != "" && !domain.IsValidGender(filter.Gender) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid gender %q", filter.Gender))
	}
	if filter.Volume != "" && !domain.IsValidVolume(filter.Volume) {
		return nil, 0, apperrors.InvalidInput(fmt.Sprintf("invalid volume %q", filter.Volume))
	}

	products, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// GetProduct retrieves a single product by its ID.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return product, nil
}
