package models

import "time"

// Favorite is a saved listing, scoped to an anonymous visitor id issued by
// the website. A small property snapshot is denormalized so the favorites
// page stays renderable when the originating provider is degraded.
type Favorite struct {
	ID           string    `json:"id"`
	VisitorID    string    `json:"visitorId"`
	PropertyID   string    `json:"propertyId"`
	PropertyCode string    `json:"propertyCode,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	Title        string    `json:"title,omitempty"`
	City         string    `json:"city,omitempty"`
	SalePrice    *int64    `json:"salePrice,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
