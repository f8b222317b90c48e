package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// Templates manages shopping templates, their items, and their family
// sharing.
type Templates struct {
	templates *store.TemplateStore
	products  *store.ProductStore
	families  *access.Families
}

func NewTemplates(db *sql.DB, families *access.Families) *Templates {
	return &Templates{
		templates: store.NewTemplateStore(db),
		products:  store.NewProductStore(db),
		families:  families,
	}
}

type TemplateInput struct {
	Title string   `json:"title"`
	Note  string   `json:"note"`
	Tags  []string `json:"tags"`
}

type TemplateItemInput struct {
	ProductID *string     `json:"productId"`
	Title     string      `json:"title"`
	Quantity  int         `json:"quantity"`
	Price     model.Price `json:"price"`
}

func (s *Templates) ListOwned(userID string) ([]model.Template, error) {
	return s.templates.ListOwned(userID)
}

func (s *Templates) ListForFamily(userID, familyID string) (*PersonalFamilyView[model.Template], error) {
	if _, err := s.families.RequireMember(userID, familyID); err != nil {
		return nil, err
	}
	personal, err := s.templates.ListOwned(userID)
	if err != nil {
		return nil, err
	}
	shared, err := s.templates.ListSharedToFamily(familyID, userID)
	if err != nil {
		return nil, err
	}
	view := mergePersonalAndFamily(personal, shared, func(t model.Template) string { return t.NormalizedKey })
	return &view, nil
}

// Get returns a template the user owns or can see through a family
// share.
func (s *Templates) Get(userID, templateID string) (*model.Template, error) {
	t, err := s.templates.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	if t.OwnerID != userID {
		shared, err := s.templates.SharedToUserFamily(templateID, userID)
		if err != nil {
			return nil, err
		}
		if !shared {
			return nil, apperr.Forbidden("Access denied")
		}
	}
	return t, nil
}

func (s *Templates) Create(userID string, in TemplateInput) (*model.Template, error) {
	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	return s.templates.Create(&model.Template{
		OwnerID:       userID,
		Title:         in.Title,
		NormalizedKey: normalize.Key(in.Title),
		Note:          in.Note,
		Tags:          in.Tags,
	})
}

func (s *Templates) requireOwned(userID, templateID string) (*model.Template, error) {
	t, err := s.templates.GetByID(templateID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("Template not found")
	}
	if t.OwnerID != userID {
		return nil, apperr.Forbidden("Only owner can modify")
	}
	return t, nil
}

func (s *Templates) Update(userID, templateID string, in TemplateInput) (*model.Template, error) {
	t, err := s.requireOwned(userID, templateID)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		t.Title = in.Title
		t.NormalizedKey = normalize.Key(in.Title)
	}
	t.Note = in.Note
	t.Tags = in.Tags
	return s.templates.Update(t)
}

// DeleteMany removes the subset of ids the caller owns; ids owned by
// someone else are dropped.
func (s *Templates) DeleteMany(userID string, ids []string) error {
	if len(ids) == 0 {
		return apperr.BadRequest("templateIds is required")
	}
	owned, err := s.templates.OwnedIDs(userID, ids)
	if err != nil {
		return err
	}
	return s.templates.DeleteMany(owned)
}

func (s *Templates) Reorder(userID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return apperr.BadRequest("orderedIds is required")
	}
	return s.templates.Reorder(userID, orderedIDs)
}

// AddItems appends items to an owned template. An item without a title
// is backfilled from its product, which must belong to the caller.
func (s *Templates) AddItems(userID, templateID string, inputs []TemplateItemInput) (*model.Template, error) {
	if _, err := s.requireOwned(userID, templateID); err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, apperr.BadRequest("items is required")
	}

	next, err := s.templates.MaxItemSortIndex(templateID)
	if err != nil {
		return nil, err
	}
	next++

	items := make([]model.TemplateItem, 0, len(inputs))
	for _, in := range inputs {
		if err := validatePrice(&in.Price); err != nil {
			return nil, err
		}

		title := in.Title
		if in.ProductID != nil {
			p, err := s.products.GetByID(*in.ProductID)
			if err != nil {
				return nil, err
			}
			if p == nil {
				return nil, apperr.BadRequest("Product not found")
			}
			if p.OwnerID != userID {
				return nil, apperr.BadRequest("Product must belong to current user")
			}
			if title == "" {
				title = p.Title
			}
		}
		if title == "" {
			return nil, apperr.BadRequest("title is required")
		}

		quantity := in.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, model.TemplateItem{
			TemplateID: templateID,
			ProductID:  in.ProductID,
			Title:      title,
			Quantity:   quantity,
			Price:      in.Price,
			SortIndex:  next,
		})
		next++
	}

	if err := s.templates.AddItems(items); err != nil {
		return nil, err
	}
	return s.templates.GetByID(templateID)
}

type UpdateTemplateItemInput struct {
	Quantity  *int         `json:"quantity"`
	Price     *model.Price `json:"price"`
	SortIndex *int         `json:"sortIndex"`
}

func (s *Templates) UpdateItem(userID, templateID, itemID string, in UpdateTemplateItemInput) (*model.Template, error) {
	if _, err := s.requireOwned(userID, templateID); err != nil {
		return nil, err
	}

	it, err := s.templates.GetItem(itemID, templateID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.BadRequest("Item not found")
	}

	if in.Quantity != nil && *in.Quantity >= 1 {
		it.Quantity = *in.Quantity
	}
	if in.Price != nil {
		if err := validatePrice(in.Price); err != nil {
			return nil, err
		}
		it.Price = *in.Price
	}
	if in.SortIndex != nil {
		it.SortIndex = *in.SortIndex
	}

	if err := s.templates.UpdateItem(it); err != nil {
		return nil, err
	}
	return s.templates.GetByID(templateID)
}

func (s *Templates) RemoveItem(userID, templateID, itemID string) (*model.Template, error) {
	if _, err := s.requireOwned(userID, templateID); err != nil {
		return nil, err
	}

	it, err := s.templates.GetItem(itemID, templateID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apperr.BadRequest("Item not found")
	}

	if err := s.templates.RemoveItem(itemID, templateID); err != nil {
		return nil, err
	}
	return s.templates.GetByID(templateID)
}

// shareReferencedProducts shares every product the caller owns that the
// given templates reference, so the receiving family can resolve the
// product details. Upsert semantics keep it idempotent.
func (s *Templates) shareReferencedProducts(userID, familyID string, templateIDs []string) error {
	productIDs, err := s.templates.ProductIDs(templateIDs)
	if err != nil {
		return err
	}
	owned, err := s.products.OwnedIDs(userID, productIDs)
	if err != nil {
		return err
	}
	for _, id := range owned {
		if err := s.products.Share(id, familyID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Templates) Share(userID, templateID, familyID string) error {
	if _, err := s.requireOwned(userID, templateID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	if err := s.templates.Share(templateID, familyID); err != nil {
		return err
	}
	return s.shareReferencedProducts(userID, familyID, []string{templateID})
}

func (s *Templates) Unshare(userID, templateID, familyID string) error {
	if _, err := s.requireOwned(userID, templateID); err != nil {
		return err
	}
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	return s.templates.Unshare(templateID, familyID)
}

func (s *Templates) SetSharing(userID, familyID string, ids []string) error {
	if _, err := s.families.RequireAdmin(userID, familyID); err != nil {
		return err
	}
	owned, err := s.templates.OwnedIDs(userID, ids)
	if err != nil {
		return err
	}
	if err := s.templates.SetSharing(familyID, userID, owned); err != nil {
		return err
	}
	return s.shareReferencedProducts(userID, familyID, owned)
}
