package primary

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/vistamar/listings-api/internal/models"
	"github.com/vistamar/listings-api/internal/providers"
)

// searchResponse is the backend's paginated listing envelope.
type searchResponse struct {
	Data  []propertyPayload `json:"data"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int               `json:"total"`
}

type photosResponse struct {
	Data []photoPayload `json:"data"`
}

type photoPayload struct {
	URL         string `json:"url"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

type leadResponse struct {
	Success bool     `json:"success"`
	ID      string   `json:"id"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

type realtorPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// propertyPayload is the backend's native property shape. The raw bytes
// are kept alongside the decoded fields so the canonical record can carry
// the untouched upstream payload.
type propertyPayload struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code"`
	Slug               string  `json:"slug"`
	Title              string  `json:"title"`
	Description        string  `json:"description"`
	Type               string  `json:"type"`
	Purpose            string  `json:"purpose"`
	Status             string  `json:"status"`
	ConstructionStatus string  `json:"construction_status"`

	Street          string   `json:"street"`
	Number          string   `json:"number"`
	Complement      string   `json:"complement"`
	Neighborhood    string   `json:"neighborhood"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	ZipCode         string   `json:"zip_code"`
	Lat             *float64 `json:"lat"`
	Lng             *float64 `json:"lng"`
	DistanceToCoast *int     `json:"distance_to_coast"`

	SalePrice   *int64 `json:"sale_price"`
	RentPrice   *int64 `json:"rent_price"`
	CondoFee    *int64 `json:"condo_fee"`
	PropertyTax *int64 `json:"property_tax"`

	Bedrooms      *int     `json:"bedrooms"`
	Suites        *int     `json:"suites"`
	Bathrooms     *int     `json:"bathrooms"`
	HalfBathrooms *int     `json:"half_bathrooms"`
	ParkingSpots  *int     `json:"parking_spots"`
	TotalArea     *float64 `json:"total_area"`
	PrivateArea   *float64 `json:"private_area"`
	LandArea      *float64 `json:"land_area"`
	Floor         *int     `json:"floor"`
	TotalFloors   *int     `json:"total_floors"`

	Amenities               map[string]bool `json:"amenities"`
	PropertyCharacteristics []string        `json:"property_characteristics"`
	LocationCharacteristics []string        `json:"location_characteristics"`

	Photos         []photoPayload `json:"photos"`
	VideoURLs      []string       `json:"video_urls"`
	VirtualTourURL string         `json:"virtual_tour_url"`

	IsExclusive    bool `json:"is_exclusive"`
	SuperHighlight bool `json:"super_highlight"`
	HasSignboard   bool `json:"has_signboard"`
	WebHighlight   bool `json:"web_highlight"`
	IsHighlight    bool `json:"is_highlight"`
	IsLaunch       bool `json:"is_launch"`

	BuildingName string          `json:"building_name"`
	Realtor      *realtorPayload `json:"realtor"`

	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	PublishedAt string `json:"published_at"`

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

// mapProperty adapts a native payload into the canonical Property.
func mapProperty(raw propertyPayload) (*models.Property, error) {
	if raw.ID == "" {
		return nil, fmt.Errorf("primary property missing id")
	}

	p := &models.Property{
		ID:                 raw.ID,
		Code:               raw.Code,
		Slug:               raw.Slug,
		Title:              raw.Title,
		Description:        raw.Description,
		Type:               models.PropertyType(raw.Type),
		Purpose:            models.PropertyPurpose(raw.Purpose),
		Status:             models.PropertyStatus(raw.Status),
		ConstructionStatus: models.ConstructionStatus(raw.ConstructionStatus),
		Address: models.Address{
			Street:          raw.Street,
			Number:          raw.Number,
			Complement:      raw.Complement,
			Neighborhood:    raw.Neighborhood,
			City:            raw.City,
			State:           raw.State,
			ZipCode:         raw.ZipCode,
			Lat:             raw.Lat,
			Lng:             raw.Lng,
			DistanceToCoast: raw.DistanceToCoast,
		},
		Pricing: models.Pricing{
			SalePrice:   raw.SalePrice,
			RentPrice:   raw.RentPrice,
			CondoFee:    raw.CondoFee,
			PropertyTax: raw.PropertyTax,
		},
		Specs: models.Specs{
			Bedrooms:      raw.Bedrooms,
			Suites:        raw.Suites,
			Bathrooms:     raw.Bathrooms,
			HalfBathrooms: raw.HalfBathrooms,
			ParkingSpots:  raw.ParkingSpots,
			TotalArea:     raw.TotalArea,
			PrivateArea:   raw.PrivateArea,
			LandArea:      raw.LandArea,
			Floor:         raw.Floor,
			TotalFloors:   raw.TotalFloors,
		},
		Amenities:               raw.Amenities,
		PropertyCharacteristics: raw.PropertyCharacteristics,
		LocationCharacteristics: raw.LocationCharacteristics,
		Photos:                  mapPhotos(raw.Photos),
		VideoURLs:               raw.VideoURLs,
		VirtualTourURL:          raw.VirtualTourURL,
		IsExclusive:             raw.IsExclusive,
		SuperHighlight:          raw.SuperHighlight,
		HasSignboard:            raw.HasSignboard,
		WebHighlight:            raw.WebHighlight,
		IsHighlight:             raw.IsHighlight,
		IsLaunch:                raw.IsLaunch,
		BuildingName:            raw.BuildingName,
		Provider:                ProviderName,
		ProviderRaw:             raw.raw,
		CreatedAt:               parseTime(raw.CreatedAt),
		UpdatedAt:               parseTime(raw.UpdatedAt),
	}

	if raw.Realtor != nil {
		p.Realtor = &models.Realtor{
			ID:    raw.Realtor.ID,
			Name:  raw.Realtor.Name,
			Phone: raw.Realtor.Phone,
			Email: raw.Realtor.Email,
		}
	}
	if t := parseTime(raw.PublishedAt); !t.IsZero() {
		p.PublishedAt = &t
	}

	return p, nil
}

// mapPhotos drops entries without an absolute HTTP/HTTPS URL and orders
// the remainder by their declared position.
func mapPhotos(payloads []photoPayload) []models.Photo {
	photos := make([]models.Photo, 0, len(payloads))
	for _, ph := range payloads {
		if !providers.ValidPhotoURL(ph.URL) {
			continue
		}
		photos = append(photos, models.Photo{
			URL:         ph.URL,
			Description: ph.Description,
			Order:       ph.Order,
		})
	}
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].Order < photos[j].Order
	})
	if len(photos) == 0 {
		return nil
	}
	return photos
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
