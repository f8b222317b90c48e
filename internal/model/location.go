package model

import "time"

type Location struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	NormalizedKey string    `json:"normalized_key"`
	Note          string    `json:"note"`
	SortIndex     int       `json:"sort_index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
