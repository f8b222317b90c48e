package model

import "time"

type Template struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Title         string         `json:"title"`
	NormalizedKey string         `json:"normalized_key"`
	Note          string         `json:"note"`
	Tags          []string       `json:"tags"`
	SortIndex     int            `json:"sort_index"`
	Items         []TemplateItem `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type TemplateItem struct {
	ID         string  `json:"id"`
	TemplateID string  `json:"template_id"`
	ProductID  *string `json:"product_id"`
	Title      string  `json:"title"`
	Quantity   int     `json:"quantity"`
	Price      Price   `json:"price"`
	SortIndex  int     `json:"sort_index"`
}
