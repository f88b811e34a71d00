package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/vistamar/listings-api/internal/errors"
	"github.com/vistamar/listings-api/internal/middleware"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/services"
)

// PropertyHandler handles listing search and detail HTTP requests.
type PropertyHandler struct {
	aggregator *services.Aggregator
}

// NewPropertyHandler creates a new PropertyHandler instance.
func NewPropertyHandler(aggregator *services.Aggregator) *PropertyHandler {
	return &PropertyHandler{aggregator: aggregator}
}

// searchRequest binds the pagination query parameters; the filter object
// binds separately since it shares the same query string.
type searchRequest struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Search handles GET /api/v1/properties.
// It runs the aggregated two-provider search and returns a merged,
// deduplicated listing page.
func (h *PropertyHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid pagination parameters", nil)
		return
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.Limit == 0 {
		req.Limit = 12
	}

	var filters models.PropertyFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		apierrors.BadRequest(c, "Invalid filter parameters", nil)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing property search", map[string]interface{}{
			"page":  req.Page,
			"limit": req.Limit,
		})
	}

	result, err := h.aggregator.Search(c.Request.Context(), filters, req.Page, req.Limit)
	if err != nil {
		apierrors.BadGateway(c, err.Error(), err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Details handles GET /api/v1/properties/:id.
// The path segment accepts either a provider-native id or the
// human-facing property code.
func (h *PropertyHandler) Details(c *gin.Context) {
	idOrCode := c.Param("id")

	p, err := h.aggregator.GetDetails(c.Request.Context(), idOrCode)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this id or code")
			return
		}
		apierrors.BadGateway(c, "Failed to fetch property details", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"property": p})
}

// Photos handles GET /api/v1/properties/:id/photos.
func (h *PropertyHandler) Photos(c *gin.Context) {
	idOrCode := c.Param("id")

	photos, err := h.aggregator.GetPhotos(c.Request.Context(), idOrCode)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			apierrors.NotFound(c, "No property found for this id or code")
			return
		}
		apierrors.BadGateway(c, "Failed to fetch property photos", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"photos": photos,
		"count":  len(photos),
	})
}
