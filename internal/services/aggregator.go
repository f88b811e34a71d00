package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vistamar/listings-api/internal/leads"
	"github.com/vistamar/listings-api/internal/logger"
	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
)

// taggingTimeout bounds the detached tag-application task, which outlives
// the originating request.
const taggingTimeout = 30 * time.Second

// Service-level errors
var (
	// ErrPropertyNotFound is returned once every provider lookup strategy
	// is exhausted.
	ErrPropertyNotFound = errors.New("property not found")
)

// MarketingClient is the slice of the marketing-automation surface the
// aggregator needs.
type MarketingClient interface {
	Name() string
	CreateLead(ctx context.Context, lead models.EnrichedLead) (*models.LeadResult, error)
	AddTags(ctx context.Context, contactID string, tags []string) error
	HealthCheck(ctx context.Context) providers.HealthStatus
}

// Aggregator unifies the two listing providers into one catalog and fans
// lead submissions out to the system of record and the marketing-automation
// system. It holds one long-lived instance of each client and no other
// state, so concurrent calls need no locking.
type Aggregator struct {
	primary   providers.ListingProvider
	secondary providers.ListingProvider
	marketing MarketingClient
	log       *logger.Logger

	// taggingDone, when set, is signalled after each detached tagging task
	// finishes. Tests use it to observe the fire-and-forget path.
	taggingDone chan struct{}
}

// NewAggregator wires the aggregator with its downstream clients. The
// secondary provider and the marketing client are optional; nil disables
// the corresponding path.
func NewAggregator(primary providers.ListingProvider, secondary providers.ListingProvider, mk MarketingClient, log *logger.Logger) *Aggregator {
	return &Aggregator{
		primary:   primary,
		secondary: secondary,
		marketing: mk,
		log:       log,
	}
}

// Search runs the merge/dedup/fallback algorithm.
//
// Stage order is load-bearing: the skip decision happens before the
// secondary is called, never by filtering its results afterwards, so the
// secondary's unreliable characteristic data cannot contaminate a
// characteristic-filtered search or its totals.
func (a *Aggregator) Search(ctx context.Context, filters models.PropertyFilters, page, limit int) (*models.PropertyList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 12
	}

	usePrimary, useSecondary := a.selectProviders(filters.ProvidersToUse)
	skipSecondary := !useSecondary || filters.HasCharacteristicFilters()

	// Explicit secondary-only mode.
	if !usePrimary {
		return a.secondary.Search(ctx, filters, page, limit)
	}

	primaryResult, err := a.primary.Search(ctx, filters, page, limit)
	if err != nil {
		if skipSecondary {
			return nil, err
		}
		a.log.Error("Primary provider search failed, attempting secondary alone", err, map[string]interface{}{
			"provider": a.primary.Name(),
		})
		secondaryResult, secErr := a.secondary.Search(ctx, filters, page, limit)
		if secErr != nil {
			// Combined provider failure degrades to an empty, renderable
			// result instead of an error.
			a.log.Error("Secondary provider search failed too, degrading to empty result", secErr, map[string]interface{}{
				"provider": a.secondary.Name(),
			})
			return &models.PropertyList{
				Properties: []models.Property{},
				Pagination: models.NewPagination(page, limit, 0),
			}, nil
		}
		return secondaryResult, nil
	}

	if skipSecondary {
		return primaryResult, nil
	}

	secondaryResult, err := a.secondary.Search(ctx, filters, page, limit)
	if err != nil {
		// A secondary failure never fails the overall call.
		a.log.Warn("Secondary provider search failed, returning primary-only result", map[string]interface{}{
			"provider": a.secondary.Name(),
			"error":    err.Error(),
		})
		return primaryResult, nil
	}

	remainder := dedupeSecondary(primaryResult.Properties, secondaryResult.Properties)
	remainder = refilterSecondary(filters, remainder)

	merged := make([]models.Property, 0, len(primaryResult.Properties)+len(remainder))
	merged = append(merged, primaryResult.Properties...)
	merged = append(merged, remainder...)

	// The secondary's own reported total is discarded: it may count
	// duplicates and entries the re-filter just dropped. Only the surfaced
	// remainder is added.
	total := primaryResult.Pagination.Total + len(remainder)

	return &models.PropertyList{
		Properties: merged,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// GetDetails resolves a property by id or code, preferring the system of
// record and falling back to the secondary provider.
func (a *Aggregator) GetDetails(ctx context.Context, idOrCode string) (*models.Property, error) {
	p, err := a.primary.GetDetails(ctx, idOrCode)
	if err == nil {
		return p, nil
	}
	if a.secondary != nil {
		if sp, secErr := a.secondary.GetDetails(ctx, idOrCode); secErr == nil {
			return sp, nil
		}
	}
	if errors.Is(err, providers.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, idOrCode)
	}
	return nil, err
}

// GetPhotos returns the media list of a property, preferring the system of
// record.
func (a *Aggregator) GetPhotos(ctx context.Context, idOrCode string) ([]models.Photo, error) {
	photos, err := a.primary.GetPhotos(ctx, idOrCode)
	if err == nil {
		return photos, nil
	}
	if a.secondary != nil {
		if sp, secErr := a.secondary.GetPhotos(ctx, idOrCode); secErr == nil {
			return sp, nil
		}
	}
	if errors.Is(err, providers.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, idOrCode)
	}
	return nil, err
}

// CreateLead enriches the submission and dispatches it concurrently to the
// system of record and, when configured, the marketing-automation system.
// The returned result is exactly the system-of-record outcome; the
// marketing outcome only triggers the detached tagging task.
func (a *Aggregator) CreateLead(ctx context.Context, input models.LeadInput) (*models.LeadResult, error) {
	enriched := leads.Enrich(input)

	// Best-effort property snapshot: a failed detail fetch is logged and
	// ignored, never fatal.
	if ref := propertyRef(input); ref != "" {
		if p, err := a.GetDetails(ctx, ref); err != nil {
			a.log.Warn("Property fetch for lead enrichment failed", map[string]interface{}{
				"property": ref,
				"error":    err.Error(),
			})
		} else {
			enriched = leads.AttachProperty(enriched, p)
		}
	}

	type outcome struct {
		result *models.LeadResult
		err    error
	}

	sorCh := make(chan outcome, 1)
	mkCh := make(chan outcome, 1)

	go func() {
		res, err := a.primary.CreateLead(ctx, enriched)
		sorCh <- outcome{result: res, err: err}
	}()

	if a.marketing != nil {
		go func() {
			res, err := a.marketing.CreateLead(ctx, enriched)
			mkCh <- outcome{result: res, err: err}
		}()
	} else {
		mkCh <- outcome{}
	}

	// Settle-all: neither call's failure cancels or blocks the other.
	sor := <-sorCh
	mk := <-mkCh

	if mk.err != nil {
		// Partial lead failure: recorded, never escalated to the caller.
		a.log.Error("Marketing-automation lead dispatch failed", mk.err, map[string]interface{}{
			"source": input.Source,
		})
	} else if mk.result != nil && mk.result.Success && mk.result.LeadID != "" {
		a.applyTagsAsync(mk.result.LeadID, enriched)
	}

	if sor.err != nil {
		// The system-of-record failure is escalated verbatim; nothing here
		// may synthesize a generic error that hides the upstream message.
		return nil, sor.err
	}
	return sor.result, nil
}

// HealthCheck ANDs the health of every configured downstream. The message
// names the first failing provider rather than a generic aggregate.
func (a *Aggregator) HealthCheck(ctx context.Context) providers.HealthStatus {
	type probe struct {
		name  string
		check func(context.Context) providers.HealthStatus
	}

	probes := []probe{{a.primary.Name(), a.primary.HealthCheck}}
	if a.secondary != nil {
		probes = append(probes, probe{a.secondary.Name(), a.secondary.HealthCheck})
	}
	if a.marketing != nil {
		probes = append(probes, probe{a.marketing.Name(), a.marketing.HealthCheck})
	}

	for _, p := range probes {
		status := p.check(ctx)
		if !status.Healthy {
			msg := fmt.Sprintf("provider %s is unhealthy", p.name)
			if status.Message != "" {
				msg = fmt.Sprintf("provider %s is unhealthy: %s", p.name, status.Message)
			}
			return providers.HealthStatus{Healthy: false, Message: msg}
		}
	}
	return providers.HealthStatus{Healthy: true}
}

// applyTagsAsync derives and applies marketing tags on a detached
// goroutine with its own timeout and panic boundary. The caller never
// waits on it and a tagging failure is logged only.
func (a *Aggregator) applyTagsAsync(contactID string, enriched models.EnrichedLead) {
	tags := leads.DeriveTags(enriched)
	if len(tags) == 0 {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("Panic in tag application", fmt.Errorf("panic: %v", r), map[string]interface{}{
					"contact_id": contactID,
				})
			}
			if a.taggingDone != nil {
				a.taggingDone <- struct{}{}
			}
		}()

		// The request context is gone by the time this runs; the task
		// carries its own deadline.
		ctx, cancel := context.WithTimeout(context.Background(), taggingTimeout)
		defer cancel()

		if err := a.marketing.AddTags(ctx, contactID, tags); err != nil {
			a.log.Error("Tag application failed", err, map[string]interface{}{
				"contact_id": contactID,
				"tags":       tags,
			})
			return
		}
		a.log.Info("Tags applied to marketing contact", map[string]interface{}{
			"contact_id": contactID,
			"tags":       tags,
		})
	}()
}

// selectProviders resolves the providersToUse escape hatch. Unknown names
// are ignored; an empty or fully-unknown list means both providers.
func (a *Aggregator) selectProviders(requested []string) (usePrimary, useSecondary bool) {
	usePrimary = true
	useSecondary = a.secondary != nil
	if len(requested) == 0 {
		return usePrimary, useSecondary
	}

	wantPrimary, wantSecondary := false, false
	for _, name := range requested {
		switch {
		case name == a.primary.Name():
			wantPrimary = true
		case a.secondary != nil && name == a.secondary.Name():
			wantSecondary = true
		}
	}
	if !wantPrimary && !wantSecondary {
		return usePrimary, useSecondary
	}
	return wantPrimary, wantSecondary && a.secondary != nil
}

// dedupeSecondary drops every secondary property whose normalized code
// already appears in the primary result. The primary's version always
// wins.
func dedupeSecondary(primary, secondary []models.Property) []models.Property {
	codes := make(map[string]struct{}, len(primary))
	for _, p := range primary {
		if code := NormalizeCode(p.Code); code != "" {
			codes[code] = struct{}{}
		}
	}

	remainder := make([]models.Property, 0, len(secondary))
	for _, p := range secondary {
		if code := NormalizeCode(p.Code); code != "" {
			if _, dup := codes[code]; dup {
				continue
			}
		}
		remainder = append(remainder, p)
	}
	return remainder
}

// refilterSecondary re-applies the filters the secondary provider cannot
// evaluate reliably server-side. The primary's results are trusted and
// never re-filtered.
func refilterSecondary(filters models.PropertyFilters, properties []models.Property) []models.Property {
	kept := make([]models.Property, 0, len(properties))
	for _, p := range properties {
		if !matchesConstructionStatus(filters.ConstructionStatuses, p.ConstructionStatus) {
			continue
		}
		if !matchesCharacteristics(filters.PropertyCharacteristics, &p) {
			continue
		}
		if !matchesCharacteristics(filters.LocationCharacteristics, &p) {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}

func propertyRef(input models.LeadInput) string {
	if input.PropertyID != "" {
		return input.PropertyID
	}
	return input.PropertyCode
}
