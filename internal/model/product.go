package model

import "time"

const (
	PriceTypeNone  = "NONE"
	PriceTypeExact = "EXACT"
	PriceTypeRange = "RANGE"
)

// Price is a NONE/EXACT/RANGE price attached to products and template
// items. EXACT stores the value in Min (Max mirrors it); RANGE stores
// Min ≤ Max.
type Price struct {
	Type     string   `json:"type"`
	Currency *string  `json:"currency"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
}

type Product struct {
	ID                 string    `json:"id"`
	OwnerID            string    `json:"owner_id"`
	Title              string    `json:"title"`
	NormalizedKey      string    `json:"normalized_key"`
	Note               string    `json:"note"`
	QuantityUnit       string    `json:"quantity_unit"`
	DefaultPrice       Price     `json:"default_price"`
	DefaultLocationIDs []string  `json:"default_location_ids"`
	SortIndex          int       `json:"sort_index"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
