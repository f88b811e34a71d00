package models

import (
	"encoding/json"
	"time"
)

// PropertyType classifies the kind of listing.
type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypePenthouse PropertyType = "penthouse"
	PropertyTypeLand      PropertyType = "land"
	PropertyTypeCommercial PropertyType = "commercial"
)

// PropertyPurpose distinguishes sale from rental listings.
type PropertyPurpose string

const (
	PurposeSale PropertyPurpose = "sale"
	PurposeRent PropertyPurpose = "rent"
)

// PropertyStatus is the commercial availability of a listing.
type PropertyStatus string

const (
	StatusAvailable         PropertyStatus = "available"
	StatusReserved          PropertyStatus = "reserved"
	StatusSold              PropertyStatus = "sold"
	StatusRented            PropertyStatus = "rented"
	StatusLaunch            PropertyStatus = "launch"
	StatusUnderConstruction PropertyStatus = "under-construction"
	StatusInactive          PropertyStatus = "inactive"
)

// ConstructionStatus is the build phase of a development, used for
// "new development" filtering.
type ConstructionStatus string

const (
	ConstructionPreLaunch         ConstructionStatus = "pre-launch"
	ConstructionLaunch            ConstructionStatus = "launch"
	ConstructionUnderConstruction ConstructionStatus = "under-construction"
	ConstructionReady             ConstructionStatus = "ready"
)

// Address is the location block of a property.
type Address struct {
	Street       string   `json:"street,omitempty"`
	Number       string   `json:"number,omitempty"`
	Complement   string   `json:"complement,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	ZipCode      string   `json:"zipCode,omitempty"`
	Lat          *float64 `json:"lat,omitempty"`
	Lng          *float64 `json:"lng,omitempty"`
	// DistanceToCoast is meters from the shoreline, when the provider
	// computes it.
	DistanceToCoast *int `json:"distanceToCoast,omitempty"`
}

// Pricing holds the monetary fields of a listing. All values are integer
// cents; nil means the provider did not disclose the value.
type Pricing struct {
	SalePrice   *int64 `json:"salePrice,omitempty"`
	RentPrice   *int64 `json:"rentPrice,omitempty"`
	CondoFee    *int64 `json:"condoFee,omitempty"`
	PropertyTax *int64 `json:"propertyTax,omitempty"`
}

// Specs holds the room/area counts of a listing. All values are optional
// non-negative numbers.
type Specs struct {
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Suites        *int     `json:"suites,omitempty"`
	Bathrooms     *int     `json:"bathrooms,omitempty"`
	HalfBathrooms *int     `json:"halfBathrooms,omitempty"`
	ParkingSpots  *int     `json:"parkingSpots,omitempty"`
	TotalArea     *float64 `json:"totalArea,omitempty"`
	PrivateArea   *float64 `json:"privateArea,omitempty"`
	LandArea      *float64 `json:"landArea,omitempty"`
	Floor         *int     `json:"floor,omitempty"`
	TotalFloors   *int     `json:"totalFloors,omitempty"`
}

// Realtor identifies the broker responsible for a listing.
type Realtor struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// Photo is a single media entry attached to a property.
type Photo struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order,omitempty"`
}

// Property is the canonical listing record produced by the provider
// adaptation layer. Instances are immutable once built: every search call
// constructs fresh records from the upstream response.
//
// Code, when present, is the cross-provider identity key: two records from
// different providers with the same normalized (case-insensitive, trimmed)
// code refer to the same physical unit.
type Property struct {
	ID   string `json:"id"`
	Code string `json:"code,omitempty"`
	Slug string `json:"slug,omitempty"`

	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Type        PropertyType        `json:"type,omitempty"`
	Purpose     PropertyPurpose     `json:"purpose,omitempty"`
	Status      PropertyStatus      `json:"status,omitempty"`
	// ConstructionStatus is provider-dependent; empty means unknown and is
	// treated as ready during client-side filtering.
	ConstructionStatus ConstructionStatus `json:"constructionStatus,omitempty"`

	Address Address `json:"address"`
	Pricing Pricing `json:"pricing"`
	Specs   Specs   `json:"specs"`

	// Amenities is an open map of boolean features (pool, gym, furnished...).
	Amenities map[string]bool `json:"amenities,omitempty"`
	// PropertyCharacteristics and LocationCharacteristics are free-text
	// labels used for characteristic filtering, which the secondary
	// provider cannot perform server-side.
	PropertyCharacteristics []string `json:"propertyCharacteristics,omitempty"`
	LocationCharacteristics []string `json:"locationCharacteristics,omitempty"`

	Photos         []Photo  `json:"photos,omitempty"`
	VideoURLs      []string `json:"videoUrls,omitempty"`
	VirtualTourURL string   `json:"virtualTourUrl,omitempty"`

	// Presentation flags; the aggregator never branches on these.
	IsExclusive    bool `json:"isExclusive,omitempty"`
	SuperHighlight bool `json:"superHighlight,omitempty"`
	HasSignboard   bool `json:"hasSignboard,omitempty"`
	WebHighlight   bool `json:"webHighlight,omitempty"`
	IsHighlight    bool `json:"isHighlight,omitempty"`
	IsLaunch       bool `json:"isLaunch,omitempty"`

	// BuildingName groups cross-listings into developments.
	BuildingName string   `json:"buildingName,omitempty"`
	Realtor      *Realtor `json:"realtor,omitempty"`
	// Provider is the name of the backend this record was adapted from.
	Provider string `json:"provider,omitempty"`
	// ProviderRaw is the untouched upstream payload, retained for
	// presentation-layer fallbacks and debugging. The aggregation
	// algorithms never read it.
	ProviderRaw json.RawMessage `json:"providerRaw,omitempty"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
}

// IntRange is an inclusive numeric filter bound; nil ends are open.
type IntRange struct {
	Min *int64 `json:"min,omitempty" form:"min"`
	Max *int64 `json:"max,omitempty" form:"max"`
}

// PropertyFilters is the normalized, flat query object accepted by every
// listing provider. All fields are optional; zero values mean "no filter".
type PropertyFilters struct {
	Cities        []string `json:"cities,omitempty" form:"cities"`
	States        []string `json:"states,omitempty" form:"states"`
	Neighborhoods []string `json:"neighborhoods,omitempty" form:"neighborhoods"`

	Types                []string `json:"types,omitempty" form:"types"`
	Statuses             []string `json:"statuses,omitempty" form:"statuses"`
	ConstructionStatuses []string `json:"constructionStatuses,omitempty" form:"constructionStatuses"`
	Purpose              string   `json:"purpose,omitempty" form:"purpose"`

	PriceMin *int64   `json:"priceMin,omitempty" form:"priceMin"`
	PriceMax *int64   `json:"priceMax,omitempty" form:"priceMax"`
	AreaMin  *float64 `json:"areaMin,omitempty" form:"areaMin"`
	AreaMax  *float64 `json:"areaMax,omitempty" form:"areaMax"`

	// Exact-match small-integer sets, each paired with an "N or more" flag
	// that turns the largest requested value into a lower bound.
	Bedrooms           []int `json:"bedrooms,omitempty" form:"bedrooms"`
	BedroomsOrMore     bool  `json:"bedroomsOrMore,omitempty" form:"bedroomsOrMore"`
	Suites             []int `json:"suites,omitempty" form:"suites"`
	SuitesOrMore       bool  `json:"suitesOrMore,omitempty" form:"suitesOrMore"`
	ParkingSpots       []int `json:"parkingSpots,omitempty" form:"parkingSpots"`
	ParkingSpotsOrMore bool  `json:"parkingSpotsOrMore,omitempty" form:"parkingSpotsOrMore"`

	// Free-text lookups.
	Code         string `json:"code,omitempty" form:"code"`
	BuildingName string `json:"buildingName,omitempty" form:"buildingName"`

	// Characteristic filters the secondary provider cannot evaluate
	// server-side. Any non-empty list forces primary-only mode.
	PropertyCharacteristics []string `json:"propertyCharacteristics,omitempty" form:"propertyCharacteristics"`
	LocationCharacteristics []string `json:"locationCharacteristics,omitempty" form:"locationCharacteristics"`
	BuildingCharacteristics []string `json:"buildingCharacteristics,omitempty" form:"buildingCharacteristics"`

	// DistanceToCoast selects a provider-defined distance bucket.
	DistanceToCoast string `json:"distanceToCoast,omitempty" form:"distanceToCoast"`

	UpdatedSince *time.Time `json:"updatedSince,omitempty" form:"updatedSince" time_format:"2006-01-02T15:04:05Z07:00"`

	SortBy  string `json:"sortBy,omitempty" form:"sortBy"`
	SortDir string `json:"sortDir,omitempty" form:"sortDir"`

	// ProvidersToUse forces single-provider mode when it names exactly one
	// configured provider. Unknown names are ignored.
	ProvidersToUse []string `json:"providersToUse,omitempty" form:"providersToUse"`
}

// HasCharacteristicFilters reports whether any of the three characteristic
// lists is non-empty. When true the secondary provider must not be queried
// at all, since its characteristic data cannot be trusted.
func (f *PropertyFilters) HasCharacteristicFilters() bool {
	return len(f.PropertyCharacteristics) > 0 ||
		len(f.LocationCharacteristics) > 0 ||
		len(f.BuildingCharacteristics) > 0
}

// Pagination carries page/limit in and the computed totals out.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination builds an output pagination block, deriving TotalPages as
// ceil(total/limit).
func NewPagination(page, limit, total int) Pagination {
	p := Pagination{Page: page, Limit: limit, Total: total}
	if limit > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	return p
}

// PropertyList is the aggregator's search return type.
type PropertyList struct {
	Properties []Property `json:"properties"`
	Pagination Pagination `json:"pagination"`
}
