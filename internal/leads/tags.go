package leads

import (
	"sort"
	"strings"

	"github.com/vistamar/listings-api/internal/models"
)

// Price-band boundaries in integer cents.
const (
	priceBandEconomyMax = 50_000_000   // up to R$ 500k
	priceBandMidMax     = 150_000_000  // up to R$ 1.5M
	priceBandHighMax    = 500_000_000  // up to R$ 5M
)

// DeriveTags computes the marketing tags for an enriched lead: price band,
// city, stated intent and lead source. The result is deduplicated and
// sorted, so identical input always yields identical output.
func DeriveTags(lead models.EnrichedLead) []string {
	seen := make(map[string]struct{})
	var tags []string
	add := func(tag string) {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	if lead.Source != "" {
		add("source-" + slugify(lead.Source))
	}
	if lead.Intent != "" {
		add("intent-" + slugify(lead.Intent))
	}
	if lead.UTM.Campaign != "" {
		add("campaign-" + slugify(lead.UTM.Campaign))
	}

	if lead.Property != nil {
		if lead.Property.City != "" {
			add("city-" + slugify(lead.Property.City))
		}
		if lead.Property.Purpose != "" {
			add("purpose-" + string(lead.Property.Purpose))
		}
		if band := priceBand(lead.Property); band != "" {
			add("price-" + band)
		}
	}

	sort.Strings(tags)
	return tags
}

// priceBand buckets the snapshot's relevant price. Rent leads band on the
// rent price, everything else on the sale price.
func priceBand(p *models.PropertySnapshot) string {
	price := p.SalePrice
	if p.Purpose == models.PurposeRent {
		price = p.RentPrice
	}
	if price == nil {
		return ""
	}
	switch {
	case *price <= priceBandEconomyMax:
		return "economy"
	case *price <= priceBandMidMax:
		return "mid"
	case *price <= priceBandHighMax:
		return "high"
	default:
		return "luxury"
	}
}

// slugify lowercases and dash-joins a free-text value for use inside a
// tag.
func slugify(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "-")
}
