package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/vistamar/listings-api/internal/errors"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/repository"
)

// visitorHeader carries the anonymous visitor id issued by the website.
const visitorHeader = "X-Visitor-ID"

// FavoritesHandler handles saved-listing HTTP requests.
type FavoritesHandler struct {
	repo repository.FavoritesRepository
}

// NewFavoritesHandler creates a new FavoritesHandler instance.
func NewFavoritesHandler(repo repository.FavoritesRepository) *FavoritesHandler {
	return &FavoritesHandler{repo: repo}
}

type addFavoriteRequest struct {
	PropertyID   string `json:"propertyId" binding:"required,max=100"`
	PropertyCode string `json:"propertyCode" binding:"omitempty,max=100"`
	Provider     string `json:"provider" binding:"omitempty,max=50"`
	Title        string `json:"title" binding:"omitempty,max=300"`
	City         string `json:"city" binding:"omitempty,max=150"`
	SalePrice    *int64 `json:"salePrice" binding:"omitempty,min=0"`
}

// List handles GET /api/v1/favorites.
func (h *FavoritesHandler) List(c *gin.Context) {
	visitorID := c.GetHeader(visitorHeader)
	if visitorID == "" {
		apierrors.BadRequest(c, "Missing "+visitorHeader+" header", nil)
		return
	}

	favorites, err := h.repo.ListByVisitor(c.Request.Context(), visitorID)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load favorites", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"favorites": favorites,
		"count":     len(favorites),
	})
}

// Add handles POST /api/v1/favorites.
func (h *FavoritesHandler) Add(c *gin.Context) {
	visitorID := c.GetHeader(visitorHeader)
	if visitorID == "" {
		apierrors.BadRequest(c, "Missing "+visitorHeader+" header", nil)
		return
	}

	var req addFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid favorite payload", nil)
		return
	}

	saved, err := h.repo.Add(c.Request.Context(), models.Favorite{
		VisitorID:    visitorID,
		PropertyID:   req.PropertyID,
		PropertyCode: req.PropertyCode,
		Provider:     req.Provider,
		Title:        req.Title,
		City:         req.City,
		SalePrice:    req.SalePrice,
	})
	if err != nil {
		apierrors.InternalServerError(c, "Failed to save favorite", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"favorite": saved})
}

// Remove handles DELETE /api/v1/favorites/:propertyId.
func (h *FavoritesHandler) Remove(c *gin.Context) {
	visitorID := c.GetHeader(visitorHeader)
	if visitorID == "" {
		apierrors.BadRequest(c, "Missing "+visitorHeader+" header", nil)
		return
	}

	err := h.repo.Remove(c.Request.Context(), visitorID, c.Param("propertyId"))
	if err != nil {
		if errors.Is(err, repository.ErrFavoriteNotFound) {
			apierrors.NotFound(c, "Favorite not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to remove favorite", err)
		return
	}

	c.Status(http.StatusNoContent)
}
