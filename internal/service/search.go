package service

import (
	"database/sql"

	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

const (
	SearchScopeAll      = "all"
	SearchScopePersonal = "personal"
	SearchScopeFamily   = "family"
)

// SearchQuery narrows an item search. Type restricts the list type,
// scope restricts which lists are considered: the caller's unshared
// lists, one family's shared lists, or everything they can read.
type SearchQuery struct {
	Query    string
	Type     string
	Scope    string
	FamilyID string
}

// SearchItemResult is one matching item with enough list context to
// jump to it.
type SearchItemResult struct {
	ID        string `json:"id"`
	ListID    string `json:"list_id"`
	ListType  string `json:"list_type"`
	ListName  string `json:"list_name"`
	Title     string `json:"title"`
	IsChecked bool   `json:"is_checked"`
	SortIndex int    `json:"sort_index"`
	Quantity  int    `json:"quantity,omitempty"`
}

// Search finds items across the lists a user can read by normalized
// title substring.
type Search struct {
	lists    *store.ListStore
	shopping *store.ShoppingItemStore
	tasks    *store.TaskItemStore
	families *store.FamilyStore
}

func NewSearch(db *sql.DB) *Search {
	return &Search{
		lists:    store.NewListStore(db),
		shopping: store.NewShoppingItemStore(db),
		tasks:    store.NewTaskItemStore(db),
		families: store.NewFamilyStore(db),
	}
}

func (s *Search) Items(userID string, q SearchQuery) ([]SearchItemResult, error) {
	key := normalize.Key(q.Query)
	if key == "" {
		return nil, apperr.BadRequest("query is required")
	}
	if q.Scope == "" {
		q.Scope = SearchScopeAll
	}

	lists, err := s.scopedLists(userID, q)
	if err != nil {
		return nil, err
	}
	if len(lists) == 0 {
		return []SearchItemResult{}, nil
	}

	byID := make(map[string]*model.List, len(lists))
	var shoppingIDs, taskIDs []string
	for i := range lists {
		l := &lists[i]
		byID[l.ID] = l
		if l.Type == model.ListTypeShopping {
			shoppingIDs = append(shoppingIDs, l.ID)
		} else {
			taskIDs = append(taskIDs, l.ID)
		}
	}

	results := []SearchItemResult{}
	if q.Type != model.ListTypeTasks {
		items, err := s.shopping.SearchByKey(shoppingIDs, key)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			results = append(results, SearchItemResult{
				ID:        it.ID,
				ListID:    it.ListID,
				ListType:  model.ListTypeShopping,
				ListName:  byID[it.ListID].Name,
				Title:     it.Title,
				IsChecked: it.IsChecked,
				SortIndex: it.SortIndex,
				Quantity:  it.Quantity,
			})
		}
	}
	if q.Type != model.ListTypeShopping {
		items, err := s.tasks.SearchByKey(taskIDs, key)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			results = append(results, SearchItemResult{
				ID:        it.ID,
				ListID:    it.ListID,
				ListType:  model.ListTypeTasks,
				ListName:  byID[it.ListID].Name,
				Title:     it.Title,
				IsChecked: it.IsChecked,
				SortIndex: it.SortIndex,
			})
		}
	}
	return results, nil
}

func (s *Search) scopedLists(userID string, q SearchQuery) ([]model.List, error) {
	switch q.Scope {
	case SearchScopePersonal:
		return s.lists.ListOwned(userID, q.Type, true)
	case SearchScopeFamily:
		if q.FamilyID == "" {
			return nil, apperr.BadRequest("familyId is required for scope=family")
		}
		m, err := s.families.GetMember(q.FamilyID, userID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, apperr.Forbidden("Not a family member")
		}
		return s.lists.ListForFamily(userID, q.FamilyID, q.Type)
	case SearchScopeAll:
		owned, err := s.lists.ListOwned(userID, q.Type, false)
		if err != nil {
			return nil, err
		}
		shared, err := s.lists.ListSharedToUser(userID, q.Type)
		if err != nil {
			return nil, err
		}
		return append(owned, shared...), nil
	default:
		return nil, apperr.BadRequest("Invalid search scope")
	}
}
