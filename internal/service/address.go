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
)

// MaxAddressesPerUser caps the size of one user's address book.
const MaxAddressesPerUser = 20

// CreateAddressInput holds the parameters for creating a new address.
type CreateAddressInput struct {
	FullName       string `json:"full_name" validate:"required"`
	PhoneNumber    string `json:"phone_number" validate:"required"`
	Region         string `json:"region" validate:"required"`
	PostalCode     string `json:"postal_code" validate:"required"`
	Street         string `json:"street" validate:"required"`
	AdditionalInfo string `json:"additional_info"`
	IsDefault      bool   `json:"is_default"`
}

// UpdateAddressInput holds the parameters for updating an address.
// Nil fields are left unchanged.
type UpdateAddressInput struct {
	FullName       *string `json:"full_name"`
	PhoneNumber    *string `json:"phone_number"`
	Region         *string `json:"region"`
	PostalCode     *string `json:"postal_code"`
	Street         *string `json:"street"`
	AdditionalInfo *string `json:"additional_info"`
}

// AddressService manages a user's address book and its single-default
// invariant.
type AddressService struct {
	repo   repository.AddressRepository
	logger *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(repo repository.AddressRepository, logger *slog.Logger) *AddressService {
	return &AddressService{
		repo:   repo,
		logger: logger,
	}
}

// CreateAddress adds an address to the user's book. The first address is
// always the default regardless of the input flag.
func (s *AddressService) CreateAddress(ctx context.Context, userID string, input CreateAddressInput) (*domain.Address, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	now := time.Now().UTC()
	address := &domain.Address{
		ID:             uuid.New().String(),
		UserID:         userID,
		FullName:       strings.TrimSpace(input.FullName),
		PhoneNumber:    strings.TrimSpace(input.PhoneNumber),
		Region:         strings.TrimSpace(input.Region),
		PostalCode:     strings.TrimSpace(input.PostalCode),
		Street:         strings.TrimSpace(input.Street),
		AdditionalInfo: strings.TrimSpace(input.AdditionalInfo),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if missing := address.Validate(); len(missing) > 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	count, err := s.repo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count addresses: %w", err)
	}
	if count >= MaxAddressesPerUser {
		return nil, apperrors.InvalidInput(fmt.Sprintf("address book must not exceed %d addresses", MaxAddressesPerUser))
	}

	makeDefault := input.IsDefault || count == 0
	if err := s.repo.Create(ctx, address, makeDefault); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}

	s.logger.InfoContext(ctx, "address created",
		slog.String("user_id", userID),
		slog.String("address_id", address.ID),
		slog.Bool("is_default", address.IsDefault),
	)

	return address, nil
}

// ListAddresses returns all addresses for the given user, default first.
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	addresses, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addresses, nil
}

// UpdateAddress updates an existing address.
func (s *AddressService) UpdateAddress(ctx context.Context, userID, addressID string, input UpdateAddressInput) (*domain.Address, error) {
	address, err := s.getOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		address.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.PhoneNumber != nil {
		address.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Region != nil {
		address.Region = strings.TrimSpace(*input.Region)
	}
	if input.PostalCode != nil {
		address.PostalCode = strings.TrimSpace(*input.PostalCode)
	}
	if input.Street != nil {
		address.Street = strings.TrimSpace(*input.Street)
	}
	if input.AdditionalInfo != nil {
		address.AdditionalInfo = strings.TrimSpace(*input.AdditionalInfo)
	}

	if missing := address.Validate(); len(missing) > 0 {
		return nil, apperrors.InvalidInput(fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
	}

	address.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, address); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	s.logger.InfoContext(ctx, "address updated",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return address, nil
}

// DeleteAddress removes an address. Deleting the default promotes the most
// recently added remaining address.
func (s *AddressService) DeleteAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.getOwned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}

	s.logger.InfoContext(ctx, "address deleted",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}

// SetDefaultAddress marks the given address as the user's default, clearing
// the previous default in the same transaction.
func (s *AddressService) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	if _, err := s.getOwned(ctx, userID, addressID); err != nil {
		return err
	}

	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}

	s.logger.InfoContext(ctx, "default address updated",
		slog.String("user_id", userID),
		slog.String("address_id", addressID),
	)

	return nil
}

// getOwned loads an address and verifies the caller owns it. Another user's
// address reads as not found.
func (s *AddressService) getOwned(ctx context.Context, userID, addressID string) (*domain.Address, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if addressID == "" {
		return nil, apperrors.InvalidInput("address id is required")
	}

	address, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		return nil, fmt.Errorf("get address: %w", err)
	}
	if address.UserID != userID {
		return nil, apperrors.NotFound("address", addressID)
	}

	return address, nil
}
