package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/vistamar/listings-api/internal/errors"
	"github.com/vistamar/listings-api/internal/middleware"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/services"
)

// LeadHandler handles lead-submission HTTP requests.
type LeadHandler struct {
	aggregator *services.Aggregator
}

// NewLeadHandler creates a new LeadHandler instance.
func NewLeadHandler(aggregator *services.Aggregator) *LeadHandler {
	return &LeadHandler{aggregator: aggregator}
}

// leadRequest is the lead-submission request body.
type leadRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=200"`
	Phone   string `json:"phone" binding:"required,min=8,max=30"`
	Email   string `json:"email" binding:"omitempty,email"`
	Message string `json:"message" binding:"omitempty,max=2000"`

	PropertyID   string `json:"propertyId" binding:"omitempty,max=100"`
	PropertyCode string `json:"propertyCode" binding:"omitempty,max=100"`

	Source string `json:"source" binding:"omitempty,max=100"`
	Intent string `json:"intent" binding:"omitempty,oneof=buy rent visit info"`

	UTMSource   string `json:"utmSource" binding:"omitempty,max=200"`
	UTMMedium   string `json:"utmMedium" binding:"omitempty,max=200"`
	UTMCampaign string `json:"utmCampaign" binding:"omitempty,max=200"`
	UTMTerm     string `json:"utmTerm" binding:"omitempty,max=200"`
	UTMContent  string `json:"utmContent" binding:"omitempty,max=200"`

	ReferralURL string            `json:"referralUrl" binding:"omitempty,url"`
	Metadata    map[string]string `json:"metadata" binding:"omitempty"`
}

// Create handles POST /api/v1/leads.
// The response status mirrors the system-of-record outcome; the
// marketing-automation dispatch never changes it.
func (h *LeadHandler) Create(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid lead payload", nil)
		return
	}

	input := models.LeadInput{
		Name:         req.Name,
		Phone:        req.Phone,
		Email:        req.Email,
		Message:      req.Message,
		PropertyID:   req.PropertyID,
		PropertyCode: req.PropertyCode,
		Source:       req.Source,
		Intent:       req.Intent,
		UTM: models.UTMBundle{
			Source:   req.UTMSource,
			Medium:   req.UTMMedium,
			Campaign: req.UTMCampaign,
			Term:     req.UTMTerm,
			Content:  req.UTMContent,
		},
		ReferralURL: req.ReferralURL,
		UserAgent:   c.Request.UserAgent(),
		Metadata:    req.Metadata,
	}
	if input.Source == "" {
		input.Source = "website"
	}
	if input.ReferralURL == "" {
		input.ReferralURL = c.Request.Referer()
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing lead submission", map[string]interface{}{
			"source":   input.Source,
			"property": req.PropertyCode,
		})
	}

	result, err := h.aggregator.CreateLead(c.Request.Context(), input)
	if err != nil {
		// System-of-record failure, surfaced verbatim.
		apierrors.BadGateway(c, err.Error(), err)
		return
	}

	status := http.StatusCreated
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}
