package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

func sampleAddress() *domain.Address {
	return &domain.Address{
		ID:          "addr-1",
		UserID:      "user-1",
		FullName:    "Ron Jeternate",
		PhoneNumber: "09171234567",
		Region:      "NCR",
		PostalCode:  "1000",
		Street:      "123 Rizal Ave",
		IsDefault:   true,
	}
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Email:    "ron@example.com",
		FullName: "Ron Jeternate",
		Role:     domain.RoleCustomer,
	}
}

func sampleOrder(status string) *domain.Order {
	return &domain.Order{
		ID:     "order-1",
		UserID: "user-1",
		Status: status,
		Items: []domain.OrderItem{
			{ID: "item-1", ProductID: "prod-1", Name: "Midnight Oud", Gender: domain.GenderMen, Size: domain.Volume30ml, UnitPrice: 219, Quantity: 1, TotalPrice: 219},
		},
		Subtotal:    219,
		ShippingFee: domain.ShippingFee,
		Total:       339,
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newRouterFixture()

	f.carts.On("Get", mock.Anything, "user-1").Return(sampleCart(), nil)
	f.addresses.On("GetDefault", mock.Anything, "user-1").Return(sampleAddress(), nil)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.carts.On("SaveIfVersion", mock.Anything, mock.Anything, 1).Return(true, nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(sampleUser(), nil)
	f.notifier.On("SendOrderConfirmation", mock.Anything, "ron@example.com", "Ron Jeternate", mock.Anything, domain.OrderStatusPending).Return(nil)

	body := `{"line_ids":["line-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)

	var order domain.Order
	remarshal(t, resp.Data, &order)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	// 219 * 2 from the cart line, plus the flat 120 shipping fee.
	assert.EqualValues(t, 438, order.Subtotal)
	assert.EqualValues(t, 558, order.Total)
	assert.Equal(t, "Ron Jeternate", order.CustomerName)
	assert.Equal(t, "NCR", order.Address.Region)
	f.orders.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestPlaceOrder_EmptyLineIDs_FailsValidation(t *testing.T) {
	f := newRouterFixture()

	body := `{"line_ids":[]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.carts.AssertNotCalled(t, "Get")
}

func TestPlaceOrder_NoCart_ReturnsEmptySelection(t *testing.T) {
	f := newRouterFixture()

	f.carts.On("Get", mock.Anything, "user-1").Return(nil, apperrors.ErrNotFound)

	body := `{"line_ids":["line-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_SELECTION", resp.Error.Code)
}

func TestPlaceOrder_NoDefaultAddress_Returns422(t *testing.T) {
	f := newRouterFixture()

	f.carts.On("Get", mock.Anything, "user-1").Return(sampleCart(), nil)
	f.addresses.On("GetDefault", mock.Anything, "user-1").Return(nil, apperrors.ErrNotFound)

	body := `{"line_ids":["line-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_DEFAULT_ADDRESS", resp.Error.Code)
	f.orders.AssertNotCalled(t, "Create")
}

func TestPlaceOrder_IdempotencyKeyHeader_ReplaysOrder(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("GetByIdempotencyKey", mock.Anything, "user-1", "key-123").
		Return(sampleOrder(domain.OrderStatusPending), nil)

	body := `{"line_ids":["line-1"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "key-123")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeResponse(t, rec)

	var order domain.Order
	remarshal(t, resp.Data, &order)
	assert.Equal(t, "order-1", order.ID)
	f.orders.AssertNotCalled(t, "Create")
}

func TestListOrders_Success(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("ListByUserID", mock.Anything, "user-1", domain.OrderFilter{Status: "pending"}, mock.Anything).
		Return([]domain.Order{*sampleOrder(domain.OrderStatusPending)}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=pending", nil)
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)
}

func TestListOrders_InvalidStatusFilter(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=refunded", nil)
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertNotCalled(t, "ListByUserID")
}

func TestGetOrder_OtherUsersOrder_Returns404(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("GetByID", mock.Anything, "order-1").Return(sampleOrder(domain.OrderStatusPending), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/order-1", nil)
	f.authorize(t, req, "user-2", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder_Success(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("GetByID", mock.Anything, "order-1").Return(sampleOrder(domain.OrderStatusPending), nil)
	f.orders.On("UpdateStatus", mock.Anything, "order-1", domain.OrderStatusCancelled, "changed my mind").Return(nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(sampleUser(), nil)
	f.notifier.On("SendOrderUpdate", mock.Anything, "ron@example.com", "Ron Jeternate", "order-1", domain.OrderStatusCancelled).Return(nil)

	body := `{"reason":"changed my mind"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/order-1/cancel", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var order domain.Order
	remarshal(t, resp.Data, &order)
	assert.Equal(t, domain.OrderStatusCancelled, order.Status)
	f.orders.AssertExpectations(t)
}

func TestCancelOrder_BlankReason_Returns400(t *testing.T) {
	f := newRouterFixture()

	body := `{"reason":"   "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/order-1/cancel", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_REASON", resp.Error.Code)
	f.orders.AssertNotCalled(t, "UpdateStatus")
}

func TestCancelOrder_ShippedOrder_Returns409(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("GetByID", mock.Anything, "order-1").Return(sampleOrder(domain.OrderStatusShipped), nil)

	body := `{"reason":"too slow"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/order-1/cancel", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusConflict, rec.Code)
	f.orders.AssertNotCalled(t, "UpdateStatus")
}

func TestUpdateOrderStatus_CustomerForbidden(t *testing.T) {
	f := newRouterFixture()

	body := `{"status":"packed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/order-1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "user-1", domain.RoleCustomer)
	rec := f.do(req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	f.orders.AssertNotCalled(t, "GetByID")
}

func TestUpdateOrderStatus_AdminSuccess(t *testing.T) {
	f := newRouterFixture()

	f.orders.On("GetByID", mock.Anything, "order-1").Return(sampleOrder(domain.OrderStatusPending), nil)
	f.orders.On("UpdateStatus", mock.Anything, "order-1", domain.OrderStatusPacked, "").Return(nil)
	f.users.On("GetByID", mock.Anything, "user-1").Return(sampleUser(), nil)
	f.notifier.On("SendOrderUpdate", mock.Anything, "ron@example.com", "Ron Jeternate", "order-1", domain.OrderStatusPacked).Return(nil)

	body := `{"status":"packed"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/order-1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "admin-1", domain.RoleAdmin)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var order domain.Order
	remarshal(t, resp.Data, &order)
	assert.Equal(t, domain.OrderStatusPacked, order.Status)
}

func TestUpdateOrderStatus_CancelledViaUpdate_Rejected(t *testing.T) {
	f := newRouterFixture()

	body := `{"status":"cancelled"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/order-1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.authorize(t, req, "admin-1", domain.RoleAdmin)
	rec := f.do(req)

	// The oneof validation on the request body stops it before the service.
	require.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertNotCalled(t, "UpdateStatus")
}
