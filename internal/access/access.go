// Package access resolves what a user may do with a list or a family.
//
// Lists follow an owner-first model: the owner can do anything, family
// members reach shared lists through their role, and everything else is
// denied. Family operations distinguish plain membership from the admin
// role.
package access

import (
	"database/sql"
	"fmt"

	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/store"
)

// Level is the kind of list access being requested.
type Level int

const (
	Read Level = iota
	Write
)

type Lists struct {
	lists    *store.ListStore
	families *store.FamilyStore
}

func NewLists(db *sql.DB) *Lists {
	return &Lists{
		lists:    store.NewListStore(db),
		families: store.NewFamilyStore(db),
	}
}

// Resolve checks whether userID may access listID at the given level
// and returns the list when allowed.
//
// The owner always passes. A non-owner is rejected outright on a
// private list. On a shared list a single batched membership lookup
// covers every family the list is shared with: any role grants Read,
// Write additionally requires the admin role in at least one of them.
func (a *Lists) Resolve(userID, listID string, level Level) (*model.List, error) {
	list, err := a.lists.GetByID(listID)
	if err != nil {
		return nil, fmt.Errorf("resolve list access: %w", err)
	}
	if list == nil {
		return nil, apperr.NotFound("List not found")
	}

	if list.OwnerID == userID {
		return list, nil
	}

	if !list.Shared() {
		return nil, apperr.Forbidden("Access denied: Private list")
	}

	memberships, err := a.families.MembershipsIn(userID, list.FamilyIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve list access: %w", err)
	}
	if len(memberships) == 0 {
		return nil, apperr.Forbidden("Access denied")
	}

	if level == Read {
		return list, nil
	}

	for _, m := range memberships {
		if m.Role == model.RoleAdmin {
			return list, nil
		}
	}
	return nil, apperr.Forbidden("Write access requires family admin role")
}

type Families struct {
	families *store.FamilyStore
}

func NewFamilies(db *sql.DB) *Families {
	return &Families{families: store.NewFamilyStore(db)}
}

// RequireMember returns the user's membership in the family or a
// Forbidden error.
func (a *Families) RequireMember(userID, familyID string) (*model.FamilyMember, error) {
	m, err := a.families.GetMember(familyID, userID)
	if err != nil {
		return nil, fmt.Errorf("check family membership: %w", err)
	}
	if m == nil {
		return nil, apperr.Forbidden("Not a family member")
	}
	return m, nil
}

// RequireAdmin returns the membership only when the user holds the
// admin role in the family.
func (a *Families) RequireAdmin(userID, familyID string) (*model.FamilyMember, error) {
	m, err := a.RequireMember(userID, familyID)
	if err != nil {
		return nil, err
	}
	if m.Role != model.RoleAdmin {
		return nil, apperr.Forbidden("Admin role required")
	}
	return m, nil
}
