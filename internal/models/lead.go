package models

// UTMBundle captures campaign attribution parameters forwarded by the
// presentation layer.
type UTMBundle struct {
	Source   string `json:"utmSource,omitempty"`
	Medium   string `json:"utmMedium,omitempty"`
	Campaign string `json:"utmCampaign,omitempty"`
	Term     string `json:"utmTerm,omitempty"`
	Content  string `json:"utmContent,omitempty"`
}

// LeadInput is a raw "contact this property" submission as received from
// the caller, before enrichment.
type LeadInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`

	PropertyID   string `json:"propertyId,omitempty"`
	PropertyCode string `json:"propertyCode,omitempty"`

	// Source identifies the originating surface (website form, whatsapp
	// button, landing page...). Intent is the visitor's stated goal
	// (buy, rent, visit).
	Source string `json:"source,omitempty"`
	Intent string `json:"intent,omitempty"`

	UTM         UTMBundle         `json:"utm,omitempty"`
	ReferralURL string            `json:"referralUrl,omitempty"`
	UserAgent   string            `json:"userAgent,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PropertySnapshot is the denormalized subset of a property carried on an
// enriched lead for downstream systems that cannot look the property up
// themselves.
type PropertySnapshot struct {
	ID           string          `json:"id,omitempty"`
	Code         string          `json:"code,omitempty"`
	Title        string          `json:"title,omitempty"`
	Type         PropertyType    `json:"type,omitempty"`
	Purpose      PropertyPurpose `json:"purpose,omitempty"`
	City         string          `json:"city,omitempty"`
	Neighborhood string          `json:"neighborhood,omitempty"`
	SalePrice    *int64          `json:"salePrice,omitempty"`
	RentPrice    *int64          `json:"rentPrice,omitempty"`
	Bedrooms     *int            `json:"bedrooms,omitempty"`
	TotalArea    *float64        `json:"totalArea,omitempty"`
}

// EnrichedLead is a LeadInput plus derived fields. Enrichment is additive
// only: an enriched lead never has fewer populated fields than its input.
type EnrichedLead struct {
	LeadInput

	// Device and Browser are classified from the submitted user-agent.
	Device  string `json:"device,omitempty"`
	Browser string `json:"browser,omitempty"`

	Property *PropertySnapshot `json:"property,omitempty"`
}

// LeadResult is the per-downstream outcome of a lead dispatch. The
// aggregator's public return is always the system-of-record's result.
type LeadResult struct {
	Success bool     `json:"success"`
	LeadID  string   `json:"leadId,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}
