package model

import "time"

const (
	ListTypeShopping = "SHOPPING"
	ListTypeTasks    = "TASKS"
)

const (
	SortModeCreatedAt = "CREATED_AT"
	SortModeManual    = "MANUAL"
)

type List struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	SortMode  string    `json:"sort_mode"`
	SortIndex int       `json:"sort_index"`
	Note      string    `json:"note"`
	Tags      []string  `json:"tags"`
	FamilyIDs []string  `json:"family_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Shared reports whether the list is visible beyond its owner.
func (l *List) Shared() bool { return len(l.FamilyIDs) > 0 }
