// Package leads holds the pure lead transformations: enrichment and tag
// derivation. Nothing in this package performs I/O.
package leads

import (
	"net/url"
	"strings"

	"github.com/vistamar/listings-api/internal/models"
)

// Enrich augments a raw lead submission with derived fields: UTM values
// recovered from the referral URL, and a device/browser classification
// from the submitted user-agent. Enrichment is additive and idempotent --
// fields already populated by the caller are never overwritten, so
// enriching twice is a no-op for every field that is already set.
func Enrich(input models.LeadInput) models.EnrichedLead {
	lead := models.EnrichedLead{LeadInput: input}
	lead.UTM = fillUTM(input.UTM, input.ReferralURL)
	lead.Device = classifyDevice(input.UserAgent)
	lead.Browser = classifyBrowser(input.UserAgent)
	return lead
}

// ReEnrich applies the same additive rules to an already-enriched lead.
func ReEnrich(lead models.EnrichedLead) models.EnrichedLead {
	lead.UTM = fillUTM(lead.UTM, lead.ReferralURL)
	if lead.Device == "" {
		lead.Device = classifyDevice(lead.UserAgent)
	}
	if lead.Browser == "" {
		lead.Browser = classifyBrowser(lead.UserAgent)
	}
	return lead
}

// AttachProperty denormalizes a subset of the property onto the lead for
// downstream systems that cannot look the property up themselves. A
// snapshot already present is kept untouched.
func AttachProperty(lead models.EnrichedLead, p *models.Property) models.EnrichedLead {
	if lead.Property != nil || p == nil {
		return lead
	}
	lead.Property = &models.PropertySnapshot{
		ID:           p.ID,
		Code:         p.Code,
		Title:        p.Title,
		Type:         p.Type,
		Purpose:      p.Purpose,
		City:         p.Address.City,
		Neighborhood: p.Address.Neighborhood,
		SalePrice:    p.Pricing.SalePrice,
		RentPrice:    p.Pricing.RentPrice,
		Bedrooms:     p.Specs.Bedrooms,
		TotalArea:    p.Specs.TotalArea,
	}
	if lead.PropertyID == "" {
		lead.PropertyID = p.ID
	}
	if lead.PropertyCode == "" {
		lead.PropertyCode = p.Code
	}
	return lead
}

// fillUTM completes missing UTM fields from the referral URL's query
// string. Caller-supplied values always win.
func fillUTM(utm models.UTMBundle, referralURL string) models.UTMBundle {
	if referralURL == "" {
		return utm
	}
	u, err := url.Parse(referralURL)
	if err != nil {
		return utm
	}
	q := u.Query()
	if utm.Source == "" {
		utm.Source = q.Get("utm_source")
	}
	if utm.Medium == "" {
		utm.Medium = q.Get("utm_medium")
	}
	if utm.Campaign == "" {
		utm.Campaign = q.Get("utm_campaign")
	}
	if utm.Term == "" {
		utm.Term = q.Get("utm_term")
	}
	if utm.Content == "" {
		utm.Content = q.Get("utm_content")
	}
	return utm
}

// classifyDevice buckets a user-agent string into bot/mobile/tablet/
// desktop. Empty input yields an empty classification.
func classifyDevice(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "bot") || strings.Contains(ua, "crawler") || strings.Contains(ua, "spider"):
		return "bot"
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// classifyBrowser extracts a coarse browser family from a user-agent
// string. Order matters: Chrome-family agents embed "Safari", and Edge
// embeds "Chrome".
func classifyBrowser(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return "edge"
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return "opera"
	case strings.Contains(ua, "firefox"):
		return "firefox"
	case strings.Contains(ua, "chrome"):
		return "chrome"
	case strings.Contains(ua, "safari"):
		return "safari"
	case strings.Contains(ua, "msie") || strings.Contains(ua, "trident"):
		return "ie"
	default:
		return "other"
	}
}
