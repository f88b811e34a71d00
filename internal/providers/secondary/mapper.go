package secondary

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
)

// searchResponse is the backend's paginated envelope. Unlike the primary,
// paging is reported as total/lastPage.
type searchResponse struct {
	Data        []propertyPayload `json:"data"`
	Total       int               `json:"total"`
	LastPage    int               `json:"lastPage"`
	CurrentPage int               `json:"currentPage"`
}

// propertyPayload is the secondary backend's native shape. Identifiers are
// numeric, monetary values arrive as floats in whole currency units, and
// characteristic labels come as a single flat list.
type propertyPayload struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Slug      string `json:"slug"`

	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Deal        string `json:"deal"`
	Situation   string `json:"situation"`
	BuildPhase  string `json:"build_phase"`

	Address      string   `json:"address"`
	Number       string   `json:"number"`
	District     string   `json:"district"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	PostalCode   string   `json:"postal_code"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`

	Price     *float64 `json:"price"`
	RentPrice *float64 `json:"rent_price"`
	CondoFee  *float64 `json:"condo_fee"`
	Iptu      *float64 `json:"iptu"`

	Bedrooms  *int     `json:"bedrooms"`
	Suites    *int     `json:"suites"`
	Bathrooms *int     `json:"bathrooms"`
	Garages   *int     `json:"garages"`
	Area      *float64 `json:"area"`
	UsefulArea *float64 `json:"useful_area"`

	Features []string `json:"features"`

	Images []string `json:"images"`
	Video  string   `json:"video"`
	Tour   string   `json:"tour"`

	Building string `json:"building"`

	AgentID    json.Number `json:"agent_id"`
	AgentName  string      `json:"agent_name"`
	AgentPhone string      `json:"agent_phone"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the payload while retaining the original bytes.
func (p *propertyPayload) UnmarshalJSON(data []byte) error {
	type alias propertyPayload
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*p = propertyPayload(a)
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// categoryMap translates the backend's listing categories into canonical
// property types.
var categoryMap = map[string]models.PropertyType{
	"apartamento": models.PropertyTypeApartment,
	"apartment":   models.PropertyTypeApartment,
	"casa":        models.PropertyTypeHouse,
	"house":       models.PropertyTypeHouse,
	"cobertura":   models.PropertyTypePenthouse,
	"penthouse":   models.PropertyTypePenthouse,
	"terreno":     models.PropertyTypeLand,
	"land":        models.PropertyTypeLand,
	"comercial":   models.PropertyTypeCommercial,
}

var dealMap = map[string]models.PropertyPurpose{
	"venda":   models.PurposeSale,
	"sale":    models.PurposeSale,
	"aluguel": models.PurposeRent,
	"rent":    models.PurposeRent,
}

var buildPhaseMap = map[string]models.ConstructionStatus{
	"pre-lancamento":    models.ConstructionPreLaunch,
	"pre_launch":        models.ConstructionPreLaunch,
	"lancamento":        models.ConstructionLaunch,
	"launch":            models.ConstructionLaunch,
	"em-obras":          models.ConstructionUnderConstruction,
	"under_construction": models.ConstructionUnderConstruction,
	"pronto":            models.ConstructionReady,
	"ready":             models.ConstructionReady,
}

// mapProperty adapts a native payload into the canonical Property.
func mapProperty(raw propertyPayload) (*models.Property, error) {
	if raw.ID == 0 {
		return nil, fmt.Errorf("secondary property missing id")
	}

	p := &models.Property{
		ID:                 fmt.Sprintf("%d", raw.ID),
		Code:               raw.Reference,
		Slug:               raw.Slug,
		Title:              raw.Title,
		Description:        raw.Description,
		Type:               categoryMap[raw.Category],
		Purpose:            dealMap[raw.Deal],
		Status:             mapSituation(raw.Situation),
		ConstructionStatus: buildPhaseMap[raw.BuildPhase],
		Address: models.Address{
			Street:       raw.Address,
			Number:       raw.Number,
			Neighborhood: raw.District,
			City:         raw.City,
			State:        raw.State,
			ZipCode:      raw.PostalCode,
			Lat:          raw.Latitude,
			Lng:          raw.Longitude,
		},
		Pricing: models.Pricing{
			SalePrice:   toCents(raw.Price),
			RentPrice:   toCents(raw.RentPrice),
			CondoFee:    toCents(raw.CondoFee),
			PropertyTax: toCents(raw.Iptu),
		},
		Specs: models.Specs{
			Bedrooms:     raw.Bedrooms,
			Suites:       raw.Suites,
			Bathrooms:    raw.Bathrooms,
			ParkingSpots: raw.Garages,
			TotalArea:    raw.Area,
			PrivateArea:  raw.UsefulArea,
		},
		// The backend has one flat feature list with no property/location
		// split; surfaced as property characteristics.
		PropertyCharacteristics: raw.Features,
		Photos:                  mapImages(raw.Images),
		VirtualTourURL:          raw.Tour,
		BuildingName:            raw.Building,
		Provider:                ProviderName,
		ProviderRaw:             raw.raw,
		CreatedAt:               parseTime(raw.CreatedAt),
		UpdatedAt:               parseTime(raw.UpdatedAt),
	}

	if raw.Video != "" {
		p.VideoURLs = []string{raw.Video}
	}
	if raw.AgentName != "" || raw.AgentID.String() != "" {
		p.Realtor = &models.Realtor{
			ID:    raw.AgentID.String(),
			Name:  raw.AgentName,
			Phone: raw.AgentPhone,
		}
	}

	return p, nil
}

func mapSituation(s string) models.PropertyStatus {
	switch s {
	case "disponivel", "available", "":
		return models.StatusAvailable
	case "reservado", "reserved":
		return models.StatusReserved
	case "vendido", "sold":
		return models.StatusSold
	case "alugado", "rented":
		return models.StatusRented
	case "inativo", "inactive":
		return models.StatusInactive
	default:
		return models.PropertyStatus(s)
	}
}

func mapImages(urls []string) []models.Photo {
	photos := make([]models.Photo, 0, len(urls))
	for i, u := range urls {
		if !providers.ValidPhotoURL(u) {
			continue
		}
		photos = append(photos, models.Photo{URL: u, Order: i})
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].Order < photos[j].Order
	})
	if len(photos) == 0 {
		return nil
	}
	return photos
}

// toCents converts whole currency units to integer cents.
func toCents(v *float64) *int64 {
	if v == nil {
		return nil
	}
	cents := int64(*v*100 + 0.5)
	return &cents
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}
