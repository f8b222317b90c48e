package model

import "time"

// ItemCore holds the fields common to shopping and task items. The item
// lifecycle (listing, toggling, reordering, expiry) operates on these
// fields only; kind-specific payload lives on the embedding struct.
//
// SortIndex is only meaningful within the item's checked-group: unchecked
// and checked items form independent orderings.
type ItemCore struct {
	ID              string     `json:"id"`
	ListID          string     `json:"list_id"`
	Title           string     `json:"title"`
	NormalizedKey   string     `json:"normalized_key"`
	RepeatEveryDays *int       `json:"repeat_every_days"`
	IsChecked       bool       `json:"is_checked"`
	CheckedAt       *time.Time `json:"checked_at"`
	SortIndex       int        `json:"sort_index"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (c *ItemCore) Core() *ItemCore { return c }

// RepeatExpired reports whether a checked repeating item's interval has
// elapsed since it was checked.
func (c *ItemCore) RepeatExpired(now time.Time) bool {
	if c.CheckedAt == nil || c.RepeatEveryDays == nil || *c.RepeatEveryDays <= 0 {
		return false
	}
	interval := time.Duration(*c.RepeatEveryDays) * 24 * time.Hour
	return now.Sub(*c.CheckedAt) >= interval
}

type ShoppingItem struct {
	ItemCore
	ProductID *string `json:"product_id"`
	Quantity  int     `json:"quantity"`
}

type TaskItem struct {
	ItemCore
	DurationMinutes *int `json:"duration_minutes"`
}
