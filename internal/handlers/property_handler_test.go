package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vistamar/listings-api/internal/logger"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
	"github.com/vistamar/listings-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubProvider is a function-backed ListingProvider for handler tests.
type stubProvider struct {
	name      string
	searchFn  func(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error)
	detailsFn func(ctx context.Context, idOrCode string) (*models.Property, error)
	photosFn  func(ctx context.Context, id string) ([]models.Photo, error)
	leadFn    func(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error)
	healthFn  func(ctx context.Context) providers.HealthStatus
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
	if s.searchFn == nil {
		return &models.PropertyList{Properties: []models.Property{}, Pagination: models.NewPagination(page, limit, 0)}, nil
	}
	return s.searchFn(ctx, filters, page, limit)
}

func (s *stubProvider) GetDetails(ctx context.Context, idOrCode string) (*models.Property, error) {
	if s.detailsFn == nil {
		return nil, providers.ErrNotFound
	}
	return s.detailsFn(ctx, idOrCode)
}

func (s *stubProvider) GetPhotos(ctx context.Context, id string) ([]models.Photo, error) {
	if s.photosFn == nil {
		return nil, providers.ErrNotFound
	}
	return s.photosFn(ctx, id)
}

func (s *stubProvider) CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
	if s.leadFn == nil {
		return nil, providers.ErrNotSupported
	}
	return s.leadFn(ctx, lead)
}

func (s *stubProvider) HealthCheck(ctx context.Context) providers.HealthStatus {
	if s.healthFn == nil {
		return providers.HealthStatus{Healthy: true}
	}
	return s.healthFn(ctx)
}

func newAggregator(primary providers.ListingProvider) *services.Aggregator {
	return services.NewAggregator(primary, nil, nil, logger.New("test"))
}

func propertyRouter(agg *services.Aggregator) *gin.Engine {
	handler := NewPropertyHandler(agg)
	router := gin.New()
	router.GET("/api/v1/properties", handler.Search)
	router.GET("/api/v1/properties/:id", handler.Details)
	router.GET("/api/v1/properties/:id/photos", handler.Photos)
	return router
}

func TestSearchEndpoint_Success(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		searchFn: func(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
			assert.Equal(t, 2, page)
			assert.Equal(t, 24, limit)
			assert.Equal(t, []string{"Itapema"}, filters.Cities)
			return &models.PropertyList{
				Properties: []models.Property{{ID: "p-1", Code: "AB123"}},
				Pagination: models.NewPagination(page, limit, 1),
			}, nil
		},
	}

	router := propertyRouter(newAggregator(primary))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?page=2&limit=24&cities=Itapema", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PropertyList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Properties, 1)
	assert.Equal(t, "AB123", resp.Properties[0].Code)
	assert.Equal(t, 1, resp.Pagination.Total)
}

func TestSearchEndpoint_DefaultsPagination(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		searchFn: func(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
			assert.Equal(t, 1, page)
			assert.Equal(t, 12, limit)
			return &models.PropertyList{Properties: []models.Property{}, Pagination: models.NewPagination(page, limit, 0)}, nil
		},
	}

	router := propertyRouter(newAggregator(primary))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchEndpoint_InvalidPagination(t *testing.T) {
	router := propertyRouter(newAggregator(&stubProvider{name: "primary"}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=1000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpoint_UpstreamFailureIs502(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		searchFn: func(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
			return nil, errors.New("primary: search failed with status 503")
		},
	}

	router := propertyRouter(newAggregator(primary))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadGateway, w.Code)

	var resp map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UPSTREAM_PROVIDER_ERROR", resp["error"]["code"])
	// The upstream message passes through verbatim.
	assert.Equal(t, "primary: search failed with status 503", resp["error"]["message"])
}

func TestDetailsEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		primary := &stubProvider{
			name: "primary",
			detailsFn: func(ctx context.Context, idOrCode string) (*models.Property, error) {
				assert.Equal(t, "AB123", idOrCode)
				return &models.Property{ID: "p-1", Code: "AB123"}, nil
			},
		}

		router := propertyRouter(newAggregator(primary))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/AB123", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp map[string]models.Property
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "p-1", resp["property"].ID)
	})

	t.Run("not found", func(t *testing.T) {
		router := propertyRouter(newAggregator(&stubProvider{name: "primary"}))

		req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestPhotosEndpoint(t *testing.T) {
	primary := &stubProvider{
		name: "primary",
		photosFn: func(ctx context.Context, id string) ([]models.Photo, error) {
			return []models.Photo{{URL: "https://cdn.example.com/1.jpg"}}, nil
		},
	}

	router := propertyRouter(newAggregator(primary))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/p-1/photos", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Photos []models.Photo `json:"photos"`
		Count  int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "https://cdn.example.com/1.jpg", resp.Photos[0].URL)
}
