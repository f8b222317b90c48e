package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/store"
)

// Lists manages list metadata, ordering, and family sharing.
type Lists struct {
	lists    *store.ListStore
	access   *access.Lists
	families *access.Families
}

func NewLists(db *sql.DB, listAccess *access.Lists, families *access.Families) *Lists {
	return &Lists{
		lists:    store.NewListStore(db),
		access:   listAccess,
		families: families,
	}
}

type CreateListInput struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Color    string   `json:"color"`
	SortMode string   `json:"sortMode"`
	Note     string   `json:"note"`
	Tags     []string `json:"tags"`
}

type UpdateListInput struct {
	Name     *string  `json:"name"`
	Icon     *string  `json:"icon"`
	Color    *string  `json:"color"`
	SortMode *string  `json:"sortMode"`
	Note     *string  `json:"note"`
	Tags     []string `json:"tags"`
}

func (s *Lists) Get(userID, listID string) (*model.List, error) {
	return s.access.Resolve(userID, listID, access.Read)
}

// ListMine returns the user's own lists, optionally only those not
// shared anywhere.
func (s *Lists) ListMine(userID, listType string, personalOnly bool) ([]model.List, error) {
	return s.lists.ListOwned(userID, listType, personalOnly)
}

// ListShared returns other owners' lists shared to any family the user
// belongs to.
func (s *Lists) ListShared(userID, listType string) ([]model.List, error) {
	return s.lists.ListSharedToUser(userID, listType)
}

func (s *Lists) ListForFamily(userID, familyID, listType string) ([]model.List, error) {
	if _, err := s.families.RequireMember(userID, familyID); err != nil {
		return nil, err
	}
	return s.lists.ListForFamily(userID, familyID, listType)
}

func (s *Lists) Create(userID string, in CreateListInput) (*model.List, error) {
	if in.Name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	if in.Type != model.ListTypeShopping && in.Type != model.ListTypeTasks {
		return nil, apperr.BadRequest("Invalid list type")
	}
	sortMode := in.SortMode
	if sortMode == "" {
		sortMode = model.SortModeCreatedAt
	}
	if sortMode != model.SortModeCreatedAt && sortMode != model.SortModeManual {
		return nil, apperr.BadRequest("Invalid sort mode")
	}

	return s.lists.Create(&model.List{
		OwnerID:  userID,
		Type:     in.Type,
		Name:     in.Name,
		Icon:     in.Icon,
		Color:    in.Color,
		SortMode: sortMode,
		Note:     in.Note,
		Tags:     in.Tags,
	})
}

// Update edits list metadata. Write access is enough; the list type is
// immutable.
func (s *Lists) Update(userID, listID string, in UpdateListInput) (*model.List, error) {
	list, err := s.access.Resolve(userID, listID, access.Write)
	if err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != "" {
		list.Name = *in.Name
	}
	if in.Icon != nil {
		list.Icon = *in.Icon
	}
	if in.Color != nil {
		list.Color = *in.Color
	}
	if in.SortMode != nil {
		if *in.SortMode != model.SortModeCreatedAt && *in.SortMode != model.SortModeManual {
			return nil, apperr.BadRequest("Invalid sort mode")
		}
		list.SortMode = *in.SortMode
	}
	if in.Note != nil {
		list.Note = *in.Note
	}
	if in.Tags != nil {
		list.Tags = in.Tags
	}

	return s.lists.Update(list)
}

func (s *Lists) requireOwned(userID, listID string) (*model.List, error) {
	list, err := s.lists.GetByID(listID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return nil, apperr.NotFound("List not found")
	}
	if list.OwnerID != userID {
		return nil, apperr.Forbidden("Only owner can modify")
	}
	return list, nil
}

// Delete removes the list with its items and shares. Owner only.
func (s *Lists) Delete(userID, listID string) error {
	if _, err := s.requireOwned(userID, listID); err != nil {
		return err
	}
	return s.lists.Delete(listID)
}

// Reorder rewrites the sort indexes of the caller's own lists.
func (s *Lists) Reorder(userID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return apperr.BadRequest("orderedIds is required")
	}
	return s.lists.Reorder(userID, orderedIDs)
}

func (s *Lists) Share(userID, listID, familyID string) error {
	if _, err := s.requireOwned(userID, listID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.lists.Share(listID, familyID)
}

func (s *Lists) Unshare(userID, listID, familyID string) error {
	if _, err := s.requireOwned(userID, listID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.lists.Unshare(listID, familyID)
}

func (s *Lists) SetSharing(userID, familyID string, ids []string) error {
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	owned, err := s.lists.OwnedIDs(userID, ids)
	if err != nil {
		return err
	}
	return s.lists.SetSharing(familyID, userID, owned)
}
