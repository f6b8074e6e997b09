package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ronjeternate/BizarreAdventure/internal/domain"
	apperrors "github.com/ronjeternate/BizarreAdventure/pkg/errors"
)

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:          "prod-1",
		Name:        "Midnight Oud",
		Description: "A smoky oriental scent",
		Gender:      domain.GenderMen,
		Volume:      domain.Volume30ml,
		Price:       219,
	}
}

func TestListProducts_Success(t *testing.T) {
	f := newRouterFixture()

	products := []domain.Product{*sampleProduct()}
	f.products.On("List", mock.Anything, domain.ProductFilter{Gender: "men"}, mock.Anything).
		Return(products, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?gender=men", nil)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.Nil(t, resp.Error)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, data["total"])
	f.products.AssertExpectations(t)
}

func TestListProducts_InvalidGenderFilter(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?gender=unisex", nil)
	rec := f.do(req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	f.products.AssertNotCalled(t, "List")
}

func TestGetProduct_Success(t *testing.T) {
	f := newRouterFixture()

	f.products.On("GetByID", mock.Anything, "prod-1").Return(sampleProduct(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/prod-1", nil)
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)

	var product domain.Product
	remarshal(t, resp.Data, &product)
	assert.Equal(t, "Midnight Oud", product.Name)
	assert.EqualValues(t, 219, product.Price)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newRouterFixture()

	f.products.On("GetByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/missing", nil)
	rec := f.do(req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

// remarshal converts the decoded envelope data back into a typed struct.
func remarshal(t *testing.T, data any, v any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
}
