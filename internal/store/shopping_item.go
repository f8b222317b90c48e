package store

import (
	"database/sql"
	"fmt"
	"time"

	"plantracker/internal/model"
)

type ShoppingItemStore struct {
	db *sql.DB
	q  Querier
}

func NewShoppingItemStore(db *sql.DB) *ShoppingItemStore {
	return &ShoppingItemStore{db: db, q: db}
}

func (s *ShoppingItemStore) WithTx(tx *sql.Tx) *ShoppingItemStore {
	return &ShoppingItemStore{db: s.db, q: tx}
}

const shoppingItemCols = `id, list_id, title, normalized_key, product_id, quantity, repeat_every_days, is_checked, checked_at, sort_index, created_at, updated_at`

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var it model.ShoppingItem
	var productID sql.NullString
	var repeat sql.NullInt64
	var checkedAt sql.NullTime
	var checked int

	err := scanner.Scan(
		&it.ID, &it.ListID, &it.Title, &it.NormalizedKey, &productID, &it.Quantity,
		&repeat, &checked, &checkedAt, &it.SortIndex, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.IsChecked = checked != 0
	if productID.Valid {
		it.ProductID = &productID.String
	}
	if repeat.Valid {
		v := int(repeat.Int64)
		it.RepeatEveryDays = &v
	}
	if checkedAt.Valid {
		it.CheckedAt = &checkedAt.Time
	}
	return &it, nil
}

func (s *ShoppingItemStore) Get(id string) (*model.ShoppingItem, error) {
	row := s.q.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_items WHERE id = ?`, id)
	it, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return it, nil
}

// ListByList returns the list's items ordered by checked-group, then
// sort index, then creation time.
func (s *ShoppingItemStore) ListByList(listID string) ([]*model.ShoppingItem, error) {
	rows, err := s.q.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE list_id = ? ORDER BY is_checked ASC, sort_index ASC, created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []*model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *ShoppingItemStore) GetMany(ids []string) ([]*model.ShoppingItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.q.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("get shopping items: %w", err)
	}
	defer rows.Close()

	var items []*model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SearchByKey finds items within the given lists whose normalized key
// contains the normalized query.
func (s *ShoppingItemStore) SearchByKey(listIDs []string, key string) ([]*model.ShoppingItem, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}

	args := append(stringArgs(listIDs), "%"+key+"%")
	rows, err := s.q.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE list_id IN (`+placeholders(len(listIDs))+`) AND normalized_key LIKE ? ORDER BY is_checked ASC, sort_index ASC, created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search shopping items: %w", err)
	}
	defer rows.Close()

	var items []*model.ShoppingItem
	for rows.Next() {
		it, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *ShoppingItemStore) Create(it *model.ShoppingItem) (*model.ShoppingItem, error) {
	id := NewID()
	_, err := s.q.Exec(
		`INSERT INTO shopping_items (id, list_id, title, normalized_key, product_id, quantity, repeat_every_days, sort_index) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, it.ListID, it.Title, it.NormalizedKey, it.ProductID, it.Quantity, it.RepeatEveryDays, it.SortIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping item: %w", err)
	}
	return s.Get(id)
}

func (s *ShoppingItemStore) Update(it *model.ShoppingItem) (*model.ShoppingItem, error) {
	_, err := s.q.Exec(
		`UPDATE shopping_items SET title = ?, normalized_key = ?, product_id = ?, quantity = ?, repeat_every_days = ?, sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		it.Title, it.NormalizedKey, it.ProductID, it.Quantity, it.RepeatEveryDays, it.SortIndex, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.Get(it.ID)
}

// SetChecked writes the checked state together with the item's new
// position in its target group.
func (s *ShoppingItemStore) SetChecked(id string, checked bool, checkedAt *time.Time, sortIndex int) (*model.ShoppingItem, error) {
	_, err := s.q.Exec(
		`UPDATE shopping_items SET is_checked = ?, checked_at = ?, sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolToInt(checked), checkedAt, sortIndex, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set checked: %w", err)
	}
	return s.Get(id)
}

// UncheckMany bulk-resets expired repeated items.
func (s *ShoppingItemStore) UncheckMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.q.Exec(
		`UPDATE shopping_items SET is_checked = 0, checked_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("uncheck items: %w", err)
	}
	return nil
}

// MaxSortIndex returns the highest sort index within one checked-group
// of the list, or 0 when the group is empty.
func (s *ShoppingItemStore) MaxSortIndex(listID string, checked bool) (int, error) {
	var max int
	err := s.q.QueryRow(
		`SELECT COALESCE(MAX(sort_index), 0) FROM shopping_items WHERE list_id = ? AND is_checked = ?`,
		listID, boolToInt(checked),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sort index: %w", err)
	}
	return max, nil
}

// Reorder assigns sort_index = position+1 for each id, in one
// transaction.
func (s *ShoppingItemStore) Reorder(orderedIDs []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(
				`UPDATE shopping_items SET sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				i+1, id,
			); err != nil {
				return fmt.Errorf("reorder shopping item: %w", err)
			}
		}
		return nil
	})
}

func (s *ShoppingItemStore) Delete(id string) error {
	_, err := s.q.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

func (s *ShoppingItemStore) IncrementQuantity(id string) error {
	_, err := s.q.Exec(
		`UPDATE shopping_items SET quantity = quantity + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("increment quantity: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
