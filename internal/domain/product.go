package domain

import "time"

// Gender and volume values a perfume can be sold under.
const (
	GenderMen   = "men"
	GenderWomen = "women"

	Volume30ml = "30ml"
	Volume65ml = "65ml"
)

// Product represents a perfume in the catalog.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Gender      string    `json:"gender"`
	Volume      string    `json:"volume"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsValidGender checks if a gender string is one of the catalog values.
func IsValidGender(gender string) bool {
	return gender == GenderMen || gender == GenderWomen
}

// IsValidVolume checks if a volume string is one of the sold sizes.
func IsValidVolume(volume string) bool {
	return volume == Volume30ml || volume == Volume65ml
}

// ProductFilter narrows catalog listings.
type ProductFilter struct {
	Gender string
	Volume string
}
