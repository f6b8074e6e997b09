package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ronjeternate/BizarreAdventure/internal/auth"
	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	"github.com/ronjeternate/BizarreAdventure/internal/event"
	"github.com/ronjeternate/BizarreAdventure/internal/service"
	"github.com/ronjeternate/BizarreAdventure/pkg/health"
	"github.com/ronjeternate/BizarreAdventure/pkg/httputil"
	pkgkafka "github.com/ronjeternate/BizarreAdventure/pkg/kafka"
	"github.com/ronjeternate/BizarreAdventure/pkg/pagination"
)

// ============================================================================
// Mock repositories
// ============================================================================

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Upsert(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter domain.ProductFilter, page pagination.Params) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) (bool, error) {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Bool(0), args.Error(1)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockAddressRepository struct {
	mock.Mock
}

func (m *mockAddressRepository) Create(ctx context.Context, a *domain.Address, makeDefault bool) error {
	args := m.Called(ctx, a, makeDefault)
	return args.Error(0)
}

func (m *mockAddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) GetDefault(ctx context.Context, userID string) (*domain.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Address), args.Error(1)
}

func (m *mockAddressRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Address), args.Error(1)
}

func (m *mockAddressRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAddressRepository) Update(ctx context.Context, a *domain.Address) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockAddressRepository) Delete(ctx context.Context, userID, addressID string) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

func (m *mockAddressRepository) SetDefault(ctx context.Context, userID, addressID string) error {
	args := m.Called(ctx, userID, addressID)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Order, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUserID(ctx context.Context, userID string, filter domain.OrderFilter, page pagination.Params) ([]domain.Order, int, error) {
	args := m.Called(ctx, userID, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id, status, cancelReason string) error {
	args := m.Called(ctx, id, status, cancelReason)
	return args.Error(0)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) Update(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type mockTestimonialRepository struct {
	mock.Mock
}

func (m *mockTestimonialRepository) Create(ctx context.Context, t *domain.Testimonial) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTestimonialRepository) ListApproved(ctx context.Context, page pagination.Params) ([]domain.Testimonial, int, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Testimonial), args.Int(1), args.Error(2)
}

func (m *mockTestimonialRepository) Approve(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendWelcome(ctx context.Context, email, name string) error {
	args := m.Called(ctx, email, name)
	return args.Error(0)
}

func (m *mockNotifier) SendOrderConfirmation(ctx context.Context, email, name, orderID, status string) error {
	args := m.Called(ctx, email, name, orderID, status)
	return args.Error(0)
}

func (m *mockNotifier) SendOrderUpdate(ctx context.Context, email, name, orderID, status string) error {
	args := m.Called(ctx, email, name, orderID, status)
	return args.Error(0)
}

// ============================================================================
// Test fixture: full production router over mock repositories
// ============================================================================

type routerFixture struct {
	products     *mockProductRepository
	carts        *mockCartRepository
	addresses    *mockAddressRepository
	orders       *mockOrderRepository
	users        *mockUserRepository
	testimonials *mockTestimonialRepository
	notifier     *mockNotifier
	jwt          *auth.JWTManager
	router       http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		products:     new(mockProductRepository),
		carts:        new(mockCartRepository),
		addresses:    new(mockAddressRepository),
		orders:       new(mockOrderRepository),
		users:        new(mockUserRepository),
		testimonials: new(mockTestimonialRepository),
		notifier:     new(mockNotifier),
		jwt:          auth.NewJWTManager("test-secret", 15*time.Minute, 7*24*time.Hour),
	}

	logger := testLogger()
	producer := testEventProducer()

	services := Services{
		Catalog:     service.NewCatalogService(f.products, logger),
		Cart:        service.NewCartService(f.carts, f.products, producer, logger),
		Address:     service.NewAddressService(f.addresses, logger),
		Checkout:    service.NewCheckoutService(f.orders, f.carts, f.addresses, f.users, producer, f.notifier, logger),
		Order:       service.NewOrderService(f.orders, f.users, producer, f.notifier, logger),
		User:        service.NewUserService(f.users, f.jwt, f.notifier, logger),
		Testimonial: service.NewTestimonialService(f.testimonials, f.users, logger),
	}

	f.router = NewRouter(services, f.jwt, health.NewHandler(), logger, nil)
	return f
}

// authorize sets a valid bearer token for the given user on the request.
func (f *routerFixture) authorize(t *testing.T, req *http.Request, userID, role string) {
	t.Helper()
	token, err := f.jwt.GenerateAccessToken(userID, userID+"@example.com", role)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	err := json.NewDecoder(rec.Body).Decode(&resp)
	require.NoError(t, err)
	return resp
}
