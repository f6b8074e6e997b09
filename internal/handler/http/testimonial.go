package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronjeternate/BizarreAdventure/internal/service"
	"github.com/ronjeternate/BizarreAdventure/pkg/httputil"
	"github.com/ronjeternate/BizarreAdventure/pkg/middleware"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
	"github.com/ronjeternate/BizarreAdventure/pkg/validator"
)

// TestimonialHandler handles HTTP requests for testimonial endpoints.
type TestimonialHandler struct {
	service *service.TestimonialService
	logger  *slog.Logger
}

// NewTestimonialHandler creates a new testimonial HTTP handler.
func NewTestimonialHandler(svc *service.TestimonialService, logger *slog.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		service: svc,
		logger:  logger,
	}
}

// SubmitTestimonialRequest is the JSON request body for submitting a testimonial.
type SubmitTestimonialRequest struct {
	Message string `json:"message" validate:"required,min=1,max=1000"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// ListTestimonials handles GET /api/v1/testimonials
func (h *TestimonialHandler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r)

	testimonials, total, err := h.service.ListTestimonials(r.Context(), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: pagination.NewResult(testimonials, total, page),
	})
}

// SubmitTestimonial handles POST /api/v1/testimonials
func (h *TestimonialHandler) SubmitTestimonial(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	var req SubmitTestimonialRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	testimonial, err := h.service.SubmitTestimonial(r.Context(), userID, service.SubmitTestimonialInput{
		Message: req.Message,
		Rating:  req.Rating,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: testimonial})
}

// ApproveTestimonial handles POST /api/v1/testimonials/{id}/approve (admin only).
func (h *TestimonialHandler) ApproveTestimonial(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.ApproveTestimonial(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "approved"}})
}
