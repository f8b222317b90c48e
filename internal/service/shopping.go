package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// Shopping manages shopping-list items. The shared lifecycle covers
// listing, toggling, reordering and removal; creation and editing live
// here because of the product reference.
type Shopping struct {
	*Lifecycle[*model.ShoppingItem]

	items    *store.ShoppingItemStore
	products *store.ProductStore
	lists    *access.Lists
}

func NewShopping(db *sql.DB, lists *access.Lists) *Shopping {
	items := store.NewShoppingItemStore(db)
	return &Shopping{
		Lifecycle: newLifecycle[*model.ShoppingItem](items, lists),
		items:     items,
		products:  store.NewProductStore(db),
		lists:     lists,
	}
}

type CreateShoppingItemInput struct {
	Title           string  `json:"title"`
	ProductID       *string `json:"productId"`
	Quantity        *int    `json:"quantity"`
	RepeatEveryDays *int    `json:"repeatEveryDays"`
}

type UpdateShoppingItemInput struct {
	Title           *string `json:"title"`
	ProductID       *string `json:"productId"`
	Quantity        *int    `json:"quantity"`
	RepeatEveryDays *int    `json:"repeatEveryDays"`
	SortIndex       *int    `json:"sortIndex"`
}

// checkProduct verifies that the product may be referenced from the
// list: on a personal list the product must belong to the list owner,
// on a shared list it must either belong to the actor or be shared to
// one of the list's families.
func (s *Shopping) checkProduct(userID string, list *model.List, productID string) (*model.Product, error) {
	p, err := s.products.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.BadRequest("Product not found")
	}

	if !list.Shared() {
		if p.OwnerID != userID {
			return nil, apperr.BadRequest("Product must belong to current user")
		}
		return p, nil
	}

	if p.OwnerID == userID {
		return p, nil
	}
	shared, err := s.products.SharedToAnyFamily(productID, list.FamilyIDs)
	if err != nil {
		return nil, err
	}
	if !shared {
		return nil, apperr.BadRequest("Product is not available for this list")
	}
	return p, nil
}

// Create appends an item to the end of the unchecked group. When the
// title is omitted it is backfilled from the referenced product.
func (s *Shopping) Create(userID, listID string, in CreateShoppingItemInput) (*model.ShoppingItem, error) {
	list, err := s.lists.Resolve(userID, listID, access.Write)
	if err != nil {
		return nil, err
	}

	title := in.Title
	if in.ProductID != nil {
		p, err := s.checkProduct(userID, list, *in.ProductID)
		if err != nil {
			return nil, err
		}
		if title == "" {
			title = p.Title
		}
	}
	if title == "" {
		return nil, apperr.BadRequest("title is required")
	}

	quantity := 1
	if in.Quantity != nil && *in.Quantity > 1 {
		quantity = *in.Quantity
	}

	max, err := s.items.MaxSortIndex(listID, false)
	if err != nil {
		return nil, err
	}

	return s.items.Create(&model.ShoppingItem{
		ItemCore: model.ItemCore{
			ListID:          listID,
			Title:           title,
			NormalizedKey:   normalize.Key(title),
			RepeatEveryDays: in.RepeatEveryDays,
			SortIndex:       max + 1,
		},
		ProductID: in.ProductID,
		Quantity:  quantity,
	})
}

// Update applies a partial edit. A nil field means "leave unchanged".
func (s *Shopping) Update(userID, listID, itemID string, in UpdateShoppingItemInput) (*model.ShoppingItem, error) {
	list, err := s.lists.Resolve(userID, listID, access.Write)
	if err != nil {
		return nil, err
	}

	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, err
	}
	if it == nil || it.ListID != listID {
		return nil, apperr.BadRequest("Item not found")
	}

	if in.ProductID != nil {
		if _, err := s.checkProduct(userID, list, *in.ProductID); err != nil {
			return nil, err
		}
		it.ProductID = in.ProductID
	}
	if in.Title != nil && *in.Title != "" {
		it.Title = *in.Title
		it.NormalizedKey = normalize.Key(*in.Title)
	}
	if in.Quantity != nil && *in.Quantity >= 1 {
		it.Quantity = *in.Quantity
	}
	if in.RepeatEveryDays != nil {
		it.RepeatEveryDays = in.RepeatEveryDays
	}
	if in.SortIndex != nil {
		it.SortIndex = *in.SortIndex
	}

	return s.items.Update(it)
}
