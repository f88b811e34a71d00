// Package secondary adapts the supplementary listing backend. Its query
// vocabulary differs from the primary's: multi-value filters are
// comma-joined, ranges use min_/max_ prefixes, and a free-text search
// parameter doubles as the property-code lookup. Lead creation is not
// supported by this backend.
package secondary

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
	ProviderName = "secondary"

	// maxPageSize is the largest page the backend accepts.
	maxPageSize = 30

	defaultPageSize = 12
)

// Config holds the connection settings for the secondary backend.
type Config struct {
	BaseURL     string
	Token       string
	Timeout     time.Duration
	MaxAttempts int
}

// Client is a stateless HTTP adapter for the secondary backend. Safe for
// concurrent reuse.
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

// Search translates the normalized filters into the backend's comma-joined
// parameter vocabulary.
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
	params.Set("per_page", strconv.Itoa(limit))

	var resp searchResponse
	_, err := c.get(ctx, "search", "/listings", params, &resp)
	if err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(resp.Data))
	for _, raw := range resp.Data {
		p, err := mapProperty(raw)
		if err != nil {
			c.log.Warn("Skipping unparseable secondary property", map[string]interface{}{
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

// GetDetails tries the native id endpoint first, then reuses the free-text
// search parameter as a code lookup before failing with ErrNotFound.
func (c *Client) GetDetails(ctx context.Context, idOrCode string) (*models.Property, error) {
	var raw propertyPayload
	_, err := c.get(ctx, "get_details", "/listings/"+url.PathEscape(idOrCode), nil, &raw)
	if err == nil {
		return mapProperty(raw)
	}

	var pe *providers.ProviderError
	if errors.As(err, &pe) && pe.StatusCode != http.StatusNotFound {
		return nil, err
	}

	// The backend has no code endpoint; its free-text search matches
	// listing references, so scan the first page of that.
	list, listErr := c.Search(ctx, models.PropertyFilters{Code: idOrCode}, 1, maxPageSize)
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

// GetPhotos returns the media list, which this backend only embeds in its
// detail payload.
func (c *Client) GetPhotos(ctx context.Context, id string) ([]models.Photo, error) {
	p, err := c.GetDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Photos, nil
}

// CreateLead is not supported by this backend: it fails deterministically
// without issuing a request, so callers never spend a retry budget here.
func (c *Client) CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error) {
	return nil, fmt.Errorf("%w: %s does not accept leads", providers.ErrNotSupported, ProviderName)
}

// HealthCheck probes the backend with a minimal one-item search.
func (c *Client) HealthCheck(ctx context.Context) providers.HealthStatus {
	params := url.Values{}
	params.Set("page", "1")
	params.Set("per_page", "1")

	var resp searchResponse
	if _, err := c.get(ctx, "health_check", "/listings", params, &resp); err != nil {
		return providers.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return providers.HealthStatus{Healthy: true}
}

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
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}
		return req, nil
	}, out)
}

// buildSearchParams maps normalized filters onto the backend's vocabulary:
// comma-joined multi-value parameters and min_/max_ range prefixes. The
// characteristic filters are deliberately absent; searches carrying them
// never reach this provider.
func buildSearchParams(filters models.PropertyFilters) url.Values {
	params := url.Values{}

	setCSV(params, "cities", filters.Cities)
	setCSV(params, "states", filters.States)
	setCSV(params, "neighborhoods", filters.Neighborhoods)
	setCSV(params, "types", filters.Types)
	setCSV(params, "statuses", filters.Statuses)
	if filters.Purpose != "" {
		params.Set("purpose", filters.Purpose)
	}

	if filters.PriceMin != nil {
		params.Set("min_price", strconv.FormatInt(*filters.PriceMin, 10))
	}
	if filters.PriceMax != nil {
		params.Set("max_price", strconv.FormatInt(*filters.PriceMax, 10))
	}
	if filters.AreaMin != nil {
		params.Set("min_area", strconv.FormatFloat(*filters.AreaMin, 'f', -1, 64))
	}
	if filters.AreaMax != nil {
		params.Set("max_area", strconv.FormatFloat(*filters.AreaMax, 'f', -1, 64))
	}

	setIntCSV(params, "bedrooms", filters.Bedrooms, filters.BedroomsOrMore)
	setIntCSV(params, "suites", filters.Suites, filters.SuitesOrMore)
	setIntCSV(params, "parking", filters.ParkingSpots, filters.ParkingSpotsOrMore)

	// The free-text search parameter doubles as the code lookup.
	if filters.Code != "" {
		params.Set("search", filters.Code)
	} else if filters.BuildingName != "" {
		params.Set("search", filters.BuildingName)
	}

	if filters.UpdatedSince != nil {
		params.Set("updated_after", filters.UpdatedSince.UTC().Format(time.RFC3339))
	}
	if filters.SortBy != "" {
		sort := filters.SortBy
		if filters.SortDir != "" {
			sort += ":" + filters.SortDir
		}
		params.Set("sort", sort)
	}

	return params
}

func setCSV(params url.Values, key string, values []string) {
	if len(values) == 0 {
		return
	}
	params.Set(key, strings.Join(values, ","))
}

func setIntCSV(params url.Values, key string, values []int, orMore bool) {
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
		params.Set("min_"+key, strconv.Itoa(max))
		return
	}
	strs := make([]string, len(values))
	for i, v := range values {
		strs[i] = strconv.Itoa(v)
	}
	params.Set(key, strings.Join(strs, ","))
}
