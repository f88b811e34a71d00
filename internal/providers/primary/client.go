// Package primary adapts the system-of-record listing backend to the
// normalized ListingProvider contract.
package primary

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vistamar/listings-api/internal/logger"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
)

const (
	// ProviderName identifies this backend in logs, health messages and
	// property provenance.
	ProviderName = "primary"

	// maxPageSize is the largest page the backend accepts; bigger requests
	// are capped silently.
	maxPageSize = 50

	defaultPageSize = 12
)

// Config holds the connection settings for the system-of-record backend.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
}

// Client is a stateless HTTP adapter for the system-of-record backend.
// Safe for concurrent reuse: all fields are set at construction and never
// mutated.
type Client struct {
	cfg  Config
	doer *providers.HTTPDoer
	log  *logger.Logger
}

// New builds a Client from configuration.
func New(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		doer: providers.NewHTTPDoer(ProviderName, cfg.Timeout, cfg.MaxAttempts),
		log:  log,
	}
}

// Name implements providers.ListingProvider.
func (c *Client) Name() string {
	return ProviderName
}

// Search translates the normalized filters into the backend's native query
// parameters and adapts the response.
func (c *Client) Search(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	params := buildSearchParams(filters)
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	var resp searchResponse
	_, err := c.get(ctx, "search", "/v1/properties", params, &resp)
	if err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(resp.Data))
	for _, raw := range resp.Data {
		p, err := mapProperty(raw)
		if err != nil {
			c.log.Warn("Skipping unparseable primary property", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		properties = append(properties, *p)
	}

	return &models.PropertyList{
		Properties: properties,
		Pagination: models.NewPagination(page, limit, resp.Total),
	}, nil
}

// GetDetails looks a property up by native id first, then falls back to
// scanning the first page of a broad listing call for a matching id or
// code before giving up with ErrNotFound.
func (c *Client) GetDetails(ctx context.Context, idOrCode string) (*models.Property, error) {
	var raw propertyPayload
	_, err := c.get(ctx, "get_details", "/v1/properties/"+url.PathEscape(idOrCode), nil, &raw)
	if err == nil {
		return mapProperty(raw)
	}

	var pe *providers.ProviderError
	if errors.As(err, &pe) && pe.StatusCode != http.StatusNotFound {
		return nil, err
	}

	// Direct lookup missed: the caller may have passed the human-facing
	// code instead of the native id.
	list, listErr := c.Search(ctx, models.PropertyFilters{}, 1, maxPageSize)
	if listErr != nil {
		return nil, listErr
	}
	for i := range list.Properties {
		p := &list.Properties[i]
		if p.ID == idOrCode || strings.EqualFold(strings.TrimSpace(p.Code), strings.TrimSpace(idOrCode)) {
			return p, nil
		}
	}

	return nil, fmt.Errorf("%w: property %q", providers.ErrNotFound, idOrCode)
}

// GetPhotos returns the media list for a property.
func (c *Client) GetPhotos(ctx context.Context, id string) ([]models.Photo, error) {
	var resp photosResponse
	_, err := c.get(ctx, "get_photos", "/v1/properties/"+url.PathEscape(id)+"/photos", nil, &resp)
	if err != nil {
		return nil, err
	}
	return mapPhotos(resp.Data), nil
}

// CreateLead submits a lead to the backend's intake endpoint.
func (c *Client) CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
	payload := buildLeadPayload(lead)

	var resp leadResponse
	_, err := c.doer.DoJSON(ctx, "create_lead", func(ctx context.Context) (*http.Request, error) {
		body, err := providers.JSONBody(payload)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/leads", body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.cfg.APIKey)
		return req, nil
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &models.LeadResult{
		Success: resp.Success,
		LeadID:  resp.ID,
		Message: resp.Message,
		Errors:  resp.Errors,
	}, nil
}

// HealthCheck probes the backend with a minimal one-item search.
func (c *Client) HealthCheck(ctx context.Context) providers.HealthStatus {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("limit", "1")

	var resp searchResponse
	if _, err := c.get(ctx, "health_check", "/v1/properties", params, &resp); err != nil {
		return providers.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return providers.HealthStatus{Healthy: true}
}

// get executes an authenticated GET against the backend.
func (c *Client) get(ctx context.Context, op, path string, params url.Values, out interface{}) ([]byte, error) {
	endpoint := c.cfg.BaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	return c.doer.DoJSON(ctx, op, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-API-Key", c.cfg.APIKey)
		return req, nil
	}, out)
}

// buildSearchParams maps normalized filters onto the backend's native
// parameter vocabulary. Multi-value filters repeat the parameter.
func buildSearchParams(filters models.PropertyFilters) url.Values {
	params := url.Values{}

	for _, city := range filters.Cities {
		params.Add("city", city)
	}
	for _, state := range filters.States {
		params.Add("state", state)
	}
	for _, n := range filters.Neighborhoods {
		params.Add("neighborhood", n)
	}
	for _, t := range filters.Types {
		params.Add("type", t)
	}
	for _, s := range filters.Statuses {
		params.Add("status", s)
	}
	for _, cs := range filters.ConstructionStatuses {
		params.Add("construction_status", cs)
	}
	if filters.Purpose != "" {
		params.Set("purpose", filters.Purpose)
	}

	if filters.PriceMin != nil {
		params.Set("price_min", strconv.FormatInt(*filters.PriceMin, 10))
	}
	if filters.PriceMax != nil {
		params.Set("price_max", strconv.FormatInt(*filters.PriceMax, 10))
	}
	if filters.AreaMin != nil {
		params.Set("area_min", strconv.FormatFloat(*filters.AreaMin, 'f', -1, 64))
	}
	if filters.AreaMax != nil {
		params.Set("area_max", strconv.FormatFloat(*filters.AreaMax, 'f', -1, 64))
	}

	addIntSet(params, "bedrooms", filters.Bedrooms, filters.BedroomsOrMore)
	addIntSet(params, "suites", filters.Suites, filters.SuitesOrMore)
	addIntSet(params, "parking_spots", filters.ParkingSpots, filters.ParkingSpotsOrMore)

	if filters.Code != "" {
		params.Set("code", filters.Code)
	}
	if filters.BuildingName != "" {
		params.Set("building_name", filters.BuildingName)
	}

	for _, ch := range filters.PropertyCharacteristics {
		params.Add("property_characteristic", ch)
	}
	for _, ch := range filters.LocationCharacteristics {
		params.Add("location_characteristic", ch)
	}
	for _, ch := range filters.BuildingCharacteristics {
		params.Add("building_characteristic", ch)
	}

	if filters.DistanceToCoast != "" {
		params.Set("distance_to_coast", filters.DistanceToCoast)
	}
	if filters.UpdatedSince != nil {
		params.Set("updated_since", filters.UpdatedSince.UTC().Format(time.RFC3339))
	}
	if filters.SortBy != "" {
		params.Set("sort", filters.SortBy)
		if filters.SortDir != "" {
			params.Set("order", filters.SortDir)
		}
	}

	return params
}

// addIntSet encodes an exact-match integer set. With the "or more" flag the
// largest requested value becomes a lower bound instead.
func addIntSet(params url.Values, key string, values []int, orMore bool) {
	if len(values) == 0 {
		return
	}
	if orMore {
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}
		params.Set(key+"_min", strconv.Itoa(max))
		return
	}
	for _, v := range values {
		params.Add(key, strconv.Itoa(v))
	}
}

// buildLeadPayload shapes an enriched lead for the backend's intake
// endpoint, flattening the snapshot fields it understands.
func buildLeadPayload(lead models.EnrichedLead) map[string]interface{} {
	payload := map[string]interface{}{
		"name":    lead.Name,
		"phone":   lead.Phone,
		"message": lead.Message,
		"source":  lead.Source,
	}
	if lead.Email != "" {
		payload["email"] = lead.Email
	}
	if lead.Intent != "" {
		payload["intent"] = lead.Intent
	}
	if lead.PropertyID != "" {
		payload["property_id"] = lead.PropertyID
	}
	if lead.PropertyCode != "" {
		payload["property_code"] = lead.PropertyCode
	}
	if lead.UTM.Source != "" {
		payload["utm_source"] = lead.UTM.Source
		payload["utm_medium"] = lead.UTM.Medium
		payload["utm_campaign"] = lead.UTM.Campaign
	}
	if lead.ReferralURL != "" {
		payload["referral_url"] = lead.ReferralURL
	}
	if lead.Device != "" {
		payload["device"] = lead.Device
	}
	if len(lead.Metadata) > 0 {
		payload["metadata"] = lead.Metadata
	}
	return payload
}
