package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// Products manages the product catalog and its family sharing.
type Products struct {
	products  *store.ProductStore
	locations *store.LocationStore
	families  *access.Families
}

func NewProducts(db *sql.DB, families *access.Families) *Products {
	return &Products{
		products:  store.NewProductStore(db),
		locations: store.NewLocationStore(db),
		families:  families,
	}
}

type ProductInput struct {
	Title              string      `json:"title"`
	Note               string      `json:"note"`
	QuantityUnit       string      `json:"quantityUnit"`
	DefaultPrice       model.Price `json:"defaultPrice"`
	DefaultLocationIDs []string    `json:"defaultLocationIds"`
}

func (s *Products) ListOwned(userID string) ([]model.Product, error) {
	return s.products.ListOwned(userID)
}

// ListForFamily returns the select view for a family: the caller's own
// products plus the ones other members shared. Plain membership is
// enough to read.
func (s *Products) ListForFamily(userID, familyID string) (*PersonalFamilyView[model.Product], error) {
	if _, err := s.families.RequireMember(userID, familyID); err != nil {
		return nil, err
	}
	personal, err := s.products.ListOwned(userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.products.ListSharedToFamily(familyID, userID)
	if err != nil {
		return nil, err
	}
	view := mergePersonalAndFamily(personal, shared, func(p model.Product) string { return p.NormalizedKey })
	return &view, nil
}

func (s *Products) Create(userID string, in ProductInput) (*model.Product, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	if err := validatePrice(&in.DefaultPrice); err != nil {
		return nil, err
	}

	if err := s.assertOwnedLocations(userID, in.DefaultLocationIDs); err != nil {
		return nil, err
	}

	return s.products.Create(&model.Product{
		OwnerID:            userID,
		Title:              in.Title,
		NormalizedKey:      normalize.Key(in.Title),
		Note:               in.Note,
		QuantityUnit:       in.QuantityUnit,
		DefaultPrice:       in.DefaultPrice,
		DefaultLocationIDs: in.DefaultLocationIDs,
	})
}

// assertOwnedLocations rejects default location references the caller
// does not own.
func (s *Products) assertOwnedLocations(userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	n, err := s.locations.CountOwned(userID, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return apperr.BadRequest("Default locations must belong to current user")
	}
	return nil
}

func (s *Products) requireOwned(userID, productID string) (*model.Product, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Product not found")
	}
	if p.OwnerID != userID {
		return nil, apperr.Forbidden("Only owner can modify")
	}
	return p, nil
}

func (s *Products) Update(userID, productID string, in ProductInput) (*model.Product, error) {
	p, err := s.requireOwned(userID, productID)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(&in.DefaultPrice); err != nil {
		return nil, err
	}
	if err := s.assertOwnedLocations(userID, in.DefaultLocationIDs); err != nil {
		return nil, err
	}

	if in.Title != "" {
		p.Title = in.Title
		p.NormalizedKey = normalize.Key(in.Title)
	}
	p.Note = in.Note
	p.QuantityUnit = in.QuantityUnit
	p.DefaultPrice = in.DefaultPrice
	p.DefaultLocationIDs = in.DefaultLocationIDs

	return s.products.Update(p)
}

func (s *Products) Delete(userID, productID string) error {
	if _, err := s.requireOwned(userID, productID); err != nil {
		return err
	}
	return s.products.Delete(productID)
}

func (s *Products) Share(userID, productID, familyID string) error {
	if _, err := s.requireOwned(userID, productID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.products.Share(productID, familyID)
}

func (s *Products) Unshare(userID, productID, familyID string) error {
	if _, err := s.requireOwned(userID, productID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.products.Unshare(productID, familyID)
}

// SetSharing replaces the family's share set among the caller's owned
// products. Requested ids the caller does not own are dropped, not
// rejected.
func (s *Products) SetSharing(userID, familyID string, ids []string) error {
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	owned, err := s.products.OwnedIDs(userID, ids)
	if err != nil {
		return err
	}
	return s.products.SetSharing(familyID, userID, owned)
}
