package providers

import (
	"context"

	"github.com/vistamar/listings-api/internal/models"
)

// HealthStatus is the outcome of a provider health probe.
type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// ListingProvider is the capability set every upstream listing backend is
// adapted to. Operations a backend cannot perform must return
// ErrNotSupported deterministically instead of attempting a request, so
// callers can tell a hard capability gap from a transient failure.
type ListingProvider interface {
	// Name identifies the provider in logs and health messages.
	Name() string

	// Search translates the normalized filters into the provider's native
	// query vocabulary and returns adapted properties. The requested limit
	// is silently capped to the provider's maximum page size.
	Search(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error)

	// GetDetails accepts either the provider's native id or its
	// human-facing code. Returns ErrNotFound once every fallback strategy
	// is exhausted.
	GetDetails(ctx context.Context, idOrCode string) (*models.Property, error)

	// GetPhotos returns the media list for a property.
	GetPhotos(ctx context.Context, id string) ([]models.Photo, error)

	// CreateLead submits a lead to the provider's intake endpoint.
	CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error)

	// HealthCheck probes the provider. It reports rather than returns
	// errors so an unhealthy provider is still a renderable answer.
	HealthCheck(ctx context.Context) HealthStatus
}
