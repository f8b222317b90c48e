package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// Locations manages shopping locations and their family sharing.
type Locations struct {
	locations *store.LocationStore
	families  *access.Families
}

func NewLocations(db *sql.DB, families *access.Families) *Locations {
	return &Locations{
		locations: store.NewLocationStore(db),
		families:  families,
	}
}

type LocationInput struct {
	Title string `json:"title"`
	Note  string `json:"note"`
}

func (s *Locations) ListOwned(userID string) ([]model.Location, error) {
	return s.locations.ListOwned(userID)
}

func (s *Locations) ListForFamily(userID, familyID string) (*PersonalFamilyView[model.Location], error) {
	if _, err := s.families.RequireMember(userID, familyID); err != nil {
		return nil, err
	}
	personal, err := s.locations.ListOwned(userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.locations.ListSharedToFamily(familyID, userID)
	if err != nil {
		return nil, err
	}
	view := mergePersonalAndFamily(personal, shared, func(l model.Location) string { return l.NormalizedKey })
	return &view, nil
}

func (s *Locations) Create(userID string, in LocationInput) (*model.Location, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	return s.locations.Create(&model.Location{
		OwnerID:       userID,
		Title:         in.Title,
		NormalizedKey: normalize.Key(in.Title),
		Note:          in.Note,
	})
}

func (s *Locations) requireOwned(userID, locationID string) (*model.Location, error) {
	l, err := s.locations.GetByID(locationID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, apperr.NotFound("Location not found")
	}
	if l.OwnerID != userID {
		return nil, apperr.Forbidden("Only owner can modify")
	}
	return l, nil
}

func (s *Locations) Update(userID, locationID string, in LocationInput) (*model.Location, error) {
	l, err := s.requireOwned(userID, locationID)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		l.Title = in.Title
		l.NormalizedKey = normalize.Key(in.Title)
	}
	l.Note = in.Note
	return s.locations.Update(l)
}

func (s *Locations) Delete(userID, locationID string) error {
	if _, err := s.requireOwned(userID, locationID); err != nil {
		return err
	}
	return s.locations.Delete(locationID)
}

func (s *Locations) Share(userID, locationID, familyID string) error {
	if _, err := s.requireOwned(userID, locationID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.locations.Share(locationID, familyID)
}

func (s *Locations) Unshare(userID, locationID, familyID string) error {
	if _, err := s.requireOwned(userID, locationID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.locations.Unshare(locationID, familyID)
}

func (s *Locations) SetSharing(userID, familyID string, ids []string) error {
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	owned, err := s.locations.OwnedIDs(userID, ids)
	if err != nil {
		return err
	}
	return s.locations.SetSharing(familyID, userID, owned)
}
