package model

// Candidate is a business record produced by the Places adapter (or a
// static seed dataset), not yet reconciled against the store.
type Candidate struct {
	PlaceID     string   `json:"place_id" yaml:"place_id"`
	Name        string   `json:"name" yaml:"name"`
	Address     string   `json:"address" yaml:"address"`
	Latitude    float64  `json:"latitude" yaml:"latitude"`
	Longitude   float64  `json:"longitude" yaml:"longitude"`
	PhoneNumber string   `json:"phone_number,omitempty" yaml:"phone_number"`
	Website     string   `json:"website,omitempty" yaml:"website"`
	Rating      float64  `json:"rating,omitempty" yaml:"rating"`
	Types       []string `json:"types,omitempty" yaml:"types"`
	Hours       []string `json:"hours,omitempty" yaml:"hours"`
	Photos      []string `json:"photos,omitempty" yaml:"photos"`
	Description string   `json:"description,omitempty" yaml:"description"`
}
