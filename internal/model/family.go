package model

import "time"

const (
	RoleAdmin  = "ADMIN"
	RoleReader = "READER"
)

type Family struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedByID string    `json:"created_by_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FamilyMember is the (family, user) membership row. Role drives every
// write-permission check on shared entities.
type FamilyMember struct {
	FamilyID  string    `json:"family_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
