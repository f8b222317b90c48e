package service

import (
	"database/sql"
	"fmt"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// ApplyResult reports how a template merge landed on the target list.
type ApplyResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// TemplateApply merges template item sets into a shopping list,
// deduplicating against the list's current items.
type TemplateApply struct {
	db        *sql.DB
	lists     *access.Lists
	templates *store.TemplateStore
	items     *store.ShoppingItemStore
}

func NewTemplateApply(db *sql.DB, lists *access.Lists) *TemplateApply {
	return &TemplateApply{
		db:        db,
		lists:     lists,
		templates: store.NewTemplateStore(db),
		items:     store.NewShoppingItemStore(db),
	}
}

// Apply flattens the visible templates' items into one sequence and
// merges them into the list. An incoming item with a product id collides
// only with the item referencing that product; without one it collides
// by normalized title. A collision bumps the existing item's quantity by
// one, anything else is created with quantity 1 at the next unchecked
// sort index. Newly created items join the dedup indexes so later
// incoming items can collide with them. The whole merge is one
// transaction.
func (s *TemplateApply) Apply(userID, listID string, templateIDs []string) (*ApplyResult, error) {
	list, err := s.lists.Resolve(userID, listID, access.Write)
	if err != nil {
		return nil, err
	}

	if len(templateIDs) == 0 {
		return nil, apperr.BadRequest("templateIds is required")
	}
	if list.Type != model.ListTypeShopping {
		return nil, apperr.BadRequest("Templates can be applied only to shopping lists")
	}

	templates, err := s.templates.ListVisible(userID, templateIDs)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, apperr.BadRequest("No templates found")
	}

	current, err := s.items.ListByList(listID)
	if err != nil {
		return nil, err
	}

	byProduct := map[string]string{}
	byKey := map[string]string{}
	for _, it := range current {
		if it.ProductID != nil {
			byProduct[*it.ProductID] = it.ID
		}
		byKey[it.NormalizedKey] = it.ID
	}

	nextIndex, err := s.items.MaxSortIndex(listID, false)
	if err != nil {
		return nil, err
	}
	nextIndex++

	var result ApplyResult
	err = store.InTx(s.db, func(tx *sql.Tx) error {
		items := s.items.WithTx(tx)
		for _, t := range templates {
			for i := range t.Items {
				in := &t.Items[i]
				key := normalize.Key(in.Title)

				var existingID string
				if in.ProductID != nil {
					existingID = byProduct[*in.ProductID]
				} else {
					existingID = byKey[key]
				}

				if existingID != "" {
					if err := items.IncrementQuantity(existingID); err != nil {
						return err
					}
					result.Updated++
					continue
				}

				created, err := items.Create(&model.ShoppingItem{
					ItemCore: model.ItemCore{
						ListID:        listID,
						Title:         in.Title,
						NormalizedKey: key,
						SortIndex:     nextIndex,
					},
					ProductID: in.ProductID,
					Quantity:  1,
				})
				if err != nil {
					return err
				}
				nextIndex++
				result.Created++
				if created.ProductID != nil {
					byProduct[*created.ProductID] = created.ID
				}
				byKey[created.NormalizedKey] = created.ID
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply templates: %w", err)
	}

	return &result, nil
}
