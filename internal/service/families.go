package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/store"
)

// Families manages family groups and member roles.
type Families struct {
	families *store.FamilyStore
	users    *store.UserStore
	access   *access.Families
}

func NewFamilies(db *sql.DB, famAccess *access.Families) *Families {
	return &Families{
		families: store.NewFamilyStore(db),
		users:    store.NewUserStore(db),
		access:   famAccess,
	}
}

// FamilyView pairs a family with the viewer's role in it.
type FamilyView struct {
	model.Family
	Role string `json:"role"`
}

func (s *Families) Create(userID, name string) (*model.Family, error) {
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	return s.families.Create(name, userID)
}

func (s *Families) ListMine(userID string) ([]FamilyView, error) {
	families, roles, err := s.families.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]FamilyView, 0, len(families))
	for _, f := range families {
		views = append(views, FamilyView{Family: f, Role: roles[f.ID]})
	}
	return views, nil
}

func (s *Families) Rename(userID, familyID, name string) (*model.Family, error) {
	if _, err := s.access.RequireAdmin(userID, familyID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	return s.families.UpdateName(familyID, name)
}

func (s *Families) Members(userID, familyID string) ([]model.FamilyMember, error) {
	if _, err := s.access.RequireMember(userID, familyID); err != nil {
		return nil, err
	}
	return s.families.ListMembers(familyID)
}

// AddMember adds or re-roles a user in the family. Admin only.
func (s *Families) AddMember(userID, familyID, memberID, role string) (*model.FamilyMember, error) {
	if _, err := s.access.RequireAdmin(userID, familyID); err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && role != model.RoleReader {
		return nil, apperr.BadRequest("Invalid role")
	}
	u, err := s.users.GetByID(memberID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound("User not found")
	}
	return s.families.AddMember(familyID, memberID, role)
}

// UpdateMemberRole changes a member's role. Demoting the last admin is
// rejected so the family never ends up unmanageable.
func (s *Families) UpdateMemberRole(userID, familyID, memberID, role string) (*model.FamilyMember, error) {
	if _, err := s.access.RequireAdmin(userID, familyID); err != nil {
		return nil, err
	}
	if role != model.RoleAdmin && role != model.RoleReader {
		return nil, apperr.BadRequest("Invalid role")
	}

	m, err := s.families.GetMember(familyID, memberID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apperr.NotFound("Member not found")
	}

	if m.Role == model.RoleAdmin && role != model.RoleAdmin {
		admins, err := s.families.CountAdmins(familyID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, apperr.BadRequest("Cannot demote the last admin")
		}
	}

	return s.families.UpdateMemberRole(familyID, memberID, role)
}

// RemoveMember removes a member. Admins may remove anyone; any member
// may remove themselves. The last admin cannot leave.
func (s *Families) RemoveMember(userID, familyID, memberID string) error {
	if userID != memberID {
		if _, err := s.access.RequireAdmin(userID, familyID); err != nil {
			return err
		}
	} else if _, err := s.access.RequireMember(userID, familyID); err != nil {
		return err
	}

	m, err := s.families.GetMember(familyID, memberID)
	if err != nil {
		return err
	}
	if m == nil {
		return apperr.NotFound("Member not found")
	}

	if m.Role == model.RoleAdmin {
		admins, err := s.families.CountAdmins(familyID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.BadRequest("Cannot remove the last admin")
		}
	}

	return s.families.RemoveMember(familyID, memberID)
}
