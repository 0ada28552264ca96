package model

import (
	"strings"
	"time"
)

// Sample-data placeId prefixes recognized by the cleanup pass. Businesses
// seeded by hand or by old demo scripts carry one of these instead of a
// real Places identifier.
var samplePlaceIDPrefixes = []string{"sample-", "example-"}

// Business is a directory listing.
//
// PlaceID is the external natural key used to de-duplicate against the
// Places API; manually entered businesses carry a synthetic unique value.
// CategoryID must reference an existing category — the reconcilers uphold
// this, not the store.
type Business struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Website     string   `json:"website,omitempty"`
	Description string   `json:"description,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Hours       []string `json:"hours,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Photos      []string `json:"photos,omitempty"`
	CategoryID  string   `json:"category_id"`
	PlaceID     string   `json:"place_id"`
	LastUpdated int64    `json:"last_updated"` // epoch milliseconds
}

// IsSample reports whether the business is recognized placeholder data
// by its placeId naming convention.
func (b Business) IsSample() bool {
	for _, p := range samplePlaceIDPrefixes {
		if strings.HasPrefix(b.PlaceID, p) {
			return true
		}
	}
	return false
}

// BusinessPatch is a partial update to a business. Nil fields are left
// untouched by the store.
type BusinessPatch struct {
	Name        *string   `json:"name,omitempty"`
	Address     *string   `json:"address,omitempty"`
	PhoneNumber *string   `json:"phone_number,omitempty"`
	Website     *string   `json:"website,omitempty"`
	Description *string   `json:"description,omitempty"`
	Rating      *float64  `json:"rating,omitempty"`
	Hours       *[]string `json:"hours,omitempty"`
	Photos      *[]string `json:"photos,omitempty"`
	CategoryID  *string   `json:"category_id,omitempty"`
	LastUpdated *int64    `json:"last_updated,omitempty"`
}

// NowMillis returns the current time as epoch milliseconds, the unit
// stored in Business.LastUpdated.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
