package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ronjeternate/BizarreAdventure/internal/auth"
	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/service"
	"github.com/ronjeternate/BizarreAdventure/pkg/health"
	"github.com/ronjeternate/BizarreAdventure/pkg/middleware"
)

// Services bundles the service layer dependencies the router needs.
type Services struct {
	Catalog     *service.CatalogService
	Cart        *service.CartService
	Address     *service.AddressService
	Checkout    *service.CheckoutService
	Order       *service.OrderService
	User        *service.UserService
	Testimonial *service.TestimonialService
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	services Services,
	jwtManager *auth.JWTManager,
	healthHandler *health.Handler,
	logger *slog.Logger,
	allowedOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	if len(allowedOrigins) > 0 {
		corsCfg.AllowedOrigins = allowedOrigins
	}

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	catalogHandler := NewCatalogHandler(services.Catalog, logger)
	cartHandler := NewCartHandler(services.Cart, logger)
	addressHandler := NewAddressHandler(services.Address, logger)
	orderHandler := NewOrderHandler(services.Checkout, services.Order, logger)
	authHandler := NewAuthHandler(services.User, logger)
	testimonialHandler := NewTestimonialHandler(services.Testimonial, logger)

	requireAuth := middleware.Auth(tokenValidator(jwtManager))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/{id}", catalogHandler.GetProduct)
		r.Get("/testimonials", testimonialHandler.ListTestimonials)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// Authenticated routes. RequestLogger runs after the auth gate so the
		// request-scoped logger picks up the user ID.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(middleware.RequestLogger(logger))

			r.Get("/me", authHandler.Me)
			r.Put("/me", authHandler.UpdateMe)

			r.Get("/cart", cartHandler.GetCart)
			r.Delete("/cart", cartHandler.ClearCart)
			r.Post("/cart/lines", cartHandler.AddLine)
			r.Put("/cart/lines/{lineId}", cartHandler.UpdateLineQuantity)
			r.Delete("/cart/lines/{lineId}", cartHandler.RemoveLine)

			r.Get("/addresses", addressHandler.ListAddresses)
			r.Post("/addresses", addressHandler.CreateAddress)
			r.Put("/addresses/{id}", addressHandler.UpdateAddress)
			r.Delete("/addresses/{id}", addressHandler.DeleteAddress)
			r.Post("/addresses/{id}/default", addressHandler.SetDefaultAddress)

			r.Post("/checkout", orderHandler.PlaceOrder)

			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Post("/orders/{id}/cancel", orderHandler.CancelOrder)

			r.Post("/testimonials", testimonialHandler.SubmitTestimonial)

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleAdmin))

				r.Put("/orders/{id}/status", orderHandler.UpdateStatus)
				r.Post("/testimonials/{id}/approve", testimonialHandler.ApproveTestimonial)
			})
		})
	})

	return r
}

// tokenValidator adapts the JWT manager to the auth middleware contract.
func tokenValidator(m *auth.JWTManager) middleware.TokenValidator {
	return func(token string) (*middleware.Claims, error) {
		claims, err := m.ValidateAccessToken(token)
		if err != nil {
			return nil, err
		}
		return &middleware.Claims{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}, nil
	}
}
