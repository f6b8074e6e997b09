package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronjeternate/BizarreAdventure/internal/service"
	"github.com/ronjeternate/BizarreAdventure/pkg/httputil"
	"github.com/ronjeternate/BizarreAdventure/pkg/middleware"
	"github.com/ronjeternate/BizarreAdventure/pkg/validator"
)

// AddressHandler handles HTTP requests for address book endpoints.
type AddressHandler struct {
	service *service.AddressService
	logger  *slog.Logger
}

// NewAddressHandler creates a new address HTTP handler.
func NewAddressHandler(svc *service.AddressService, logger *slog.Logger) *AddressHandler {
	return &AddressHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateAddressRequest is the JSON request body for adding an address.
type CreateAddressRequest struct {
	FullName       string `json:"full_name" validate:"required,min=1,max=200"`
	PhoneNumber    string `json:"phone_number" validate:"required,min=7,max=20"`
	Region         string `json:"region" validate:"required"`
	PostalCode     string `json:"postal_code" validate:"required"`
	Street         string `json:"street" validate:"required"`
	AdditionalInfo string `json:"additional_info"`
	IsDefault      bool   `json:"is_default"`
}

// UpdateAddressRequest is the JSON request body for updating an address.
type UpdateAddressRequest struct {
	FullName       *string `json:"full_name"`
	PhoneNumber    *string `json:"phone_number"`
	Region         *string `json:"region"`
	PostalCode     *string `json:"postal_code"`
	Street         *string `json:"street"`
	AdditionalInfo *string `json:"additional_info"`
}

// ListAddresses handles GET /api/v1/addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	addresses, err := h.service.ListAddresses(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: addresses})
}

// CreateAddress handles POST /api/v1/addresses
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req CreateAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.service.CreateAddress(r.Context(), userID, service.CreateAddressInput{
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		Region:         req.Region,
		PostalCode:     req.PostalCode,
		Street:         req.Street,
		AdditionalInfo: req.AdditionalInfo,
		IsDefault:      req.IsDefault,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: address})
}

// UpdateAddress handles PUT /api/v1/addresses/{id}
func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "id")

	var req UpdateAddressRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	address, err := h.service.UpdateAddress(r.Context(), userID, addressID, service.UpdateAddressInput{
		FullName:       req.FullName,
		PhoneNumber:    req.PhoneNumber,
		Region:         req.Region,
		PostalCode:     req.PostalCode,
		Street:         req.Street,
		AdditionalInfo: req.AdditionalInfo,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: address})
}

// DeleteAddress handles DELETE /api/v1/addresses/{id}
func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "id")

	if err := h.service.DeleteAddress(r.Context(), userID, addressID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// SetDefaultAddress handles POST /api/v1/addresses/{id}/default
func (h *AddressHandler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	addressID := chi.URLParam(r, "id")

	if err := h.service.SetDefaultAddress(r.Context(), userID, addressID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "default set"}})
}
