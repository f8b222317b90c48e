package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type ListStore struct {
	db *sql.DB
	q  Querier
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db, q: db}
}

func (s *ListStore) WithTx(tx *sql.Tx) *ListStore {
	return &ListStore{db: s.db, q: tx}
}

const listCols = `id, owner_id, type, name, icon, color, sort_mode, sort_index, note, tags, created_at, updated_at`

func scanList(scanner interface{ Scan(...any) error }) (*model.List, error) {
	var l model.List
	var tags string
	err := scanner.Scan(
		&l.ID, &l.OwnerID, &l.Type, &l.Name, &l.Icon, &l.Color,
		&l.SortMode, &l.SortIndex, &l.Note, &tags, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Tags = unmarshalTags(tags)
	return &l, nil
}

func (s *ListStore) shareIDs(listID string) ([]string, error) {
	rows, err := s.q.Query(
		`SELECT family_id FROM list_family_shares WHERE list_id = ? ORDER BY created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID returns the list with its family-share set loaded, or nil when
// absent.
func (s *ListStore) GetByID(id string) (*model.List, error) {
	row := s.q.QueryRow(`SELECT `+listCols+` FROM lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	l.FamilyIDs, err = s.shareIDs(id)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (s *ListStore) Create(l *model.List) (*model.List, error) {
	id := NewID()
	_, err := s.q.Exec(
		`INSERT INTO lists (id, owner_id, type, name, icon, color, sort_mode, note, tags) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, l.OwnerID, l.Type, l.Name, l.Icon, l.Color, l.SortMode, l.Note, marshalTags(l.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	return s.GetByID(id)
}

func (s *ListStore) Update(l *model.List) (*model.List, error) {
	_, err := s.q.Exec(
		`UPDATE lists SET name = ?, icon = ?, color = ?, sort_mode = ?, note = ?, tags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		l.Name, l.Icon, l.Color, l.SortMode, l.Note, marshalTags(l.Tags), l.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return s.GetByID(l.ID)
}

// Delete removes the list with its shares and items in one transaction.
func (s *ListStore) Delete(id string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM list_family_shares WHERE list_id = ?`,
			`DELETE FROM shopping_items WHERE list_id = ?`,
			`DELETE FROM task_items WHERE list_id = ?`,
			`DELETE FROM lists WHERE id = ?`,
		} {
			if _, err := tx.Exec(stmt, id); err != nil {
				return fmt.Errorf("delete list: %w", err)
			}
		}
		return nil
	})
}

func (s *ListStore) collect(rows *sql.Rows) ([]model.List, error) {
	defer rows.Close()

	var lists []model.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		shares, err := s.shareIDs(lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].FamilyIDs = shares
	}
	return lists, nil
}

const listOrder = ` ORDER BY sort_index ASC, created_at ASC`

// ListOwned returns the user's own lists, optionally filtered by type.
// When personalOnly is set, lists shared to any family are excluded.
func (s *ListStore) ListOwned(ownerID, listType string, personalOnly bool) ([]model.List, error) {
	query := `SELECT ` + listCols + ` FROM lists WHERE owner_id = ?`
	args := []any{ownerID}
	if listType != "" {
		query += ` AND type = ?`
		args = append(args, listType)
	}
	if personalOnly {
		query += ` AND id NOT IN (SELECT list_id FROM list_family_shares)`
	}
	query += listOrder

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list owned lists: %w", err)
	}
	return s.collect(rows)
}

// ListSharedToUser returns lists shared to any family the user belongs to.
func (s *ListStore) ListSharedToUser(userID, listType string) ([]model.List, error) {
	query := `SELECT DISTINCT ` + colsWithPrefix(listCols, "l") + ` FROM lists l
		 JOIN list_family_shares s ON s.list_id = l.id
		 JOIN family_members m ON m.family_id = s.family_id
		 WHERE m.user_id = ?`
	args := []any{userID}
	if listType != "" {
		query += ` AND l.type = ?`
		args = append(args, listType)
	}
	query += ` ORDER BY l.sort_index ASC, l.created_at ASC`

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list shared lists: %w", err)
	}
	return s.collect(rows)
}

// ListForFamily returns lists shared to the given family, provided the
// user is a member of it.
func (s *ListStore) ListForFamily(userID, familyID, listType string) ([]model.List, error) {
	query := `SELECT DISTINCT ` + colsWithPrefix(listCols, "l") + ` FROM lists l
		 JOIN list_family_shares s ON s.list_id = l.id
		 JOIN family_members m ON m.family_id = s.family_id AND m.user_id = ?
		 WHERE s.family_id = ?`
	args := []any{userID, familyID}
	if listType != "" {
		query += ` AND l.type = ?`
		args = append(args, listType)
	}
	query += ` ORDER BY l.sort_index ASC, l.created_at ASC`

	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list family lists: %w", err)
	}
	return s.collect(rows)
}

// Reorder assigns sort_index by position for the owner's lists, in one
// transaction.
func (s *ListStore) Reorder(ownerID string, orderedIDs []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(
				`UPDATE lists SET sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?`,
				i, id, ownerID,
			); err != nil {
				return fmt.Errorf("reorder list: %w", err)
			}
		}
		return nil
	})
}

// --- Sharing methods ---

// Share grants a family read access to the list. Sharing an already
// shared list is a no-op.
func (s *ListStore) Share(listID, familyID string) error {
	_, err := s.q.Exec(
		`INSERT INTO list_family_shares (list_id, family_id) VALUES (?, ?)
		 ON CONFLICT (list_id, family_id) DO NOTHING`,
		listID, familyID,
	)
	if err != nil {
		return fmt.Errorf("share list: %w", err)
	}
	return nil
}

func (s *ListStore) Unshare(listID, familyID string) error {
	_, err := s.q.Exec(
		`DELETE FROM list_family_shares WHERE list_id = ? AND family_id = ?`,
		listID, familyID,
	)
	if err != nil {
		return fmt.Errorf("unshare list: %w", err)
	}
	return nil
}

// OwnedIDs filters ids down to those owned by ownerID.
func (s *ListStore) OwnedIDs(ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	rows, err := s.q.Query(
		`SELECT id FROM lists WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("filter owned lists: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan list id: %w", err)
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

// SetSharing replaces the family's share set among the owner's lists:
// all existing shares from that family on the owner's lists are dropped,
// then shares for the given ids are recreated, in one transaction.
func (s *ListStore) SetSharing(familyID, ownerID string, ids []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`DELETE FROM list_family_shares WHERE family_id = ? AND list_id IN (SELECT id FROM lists WHERE owner_id = ?)`,
			familyID, ownerID,
		); err != nil {
			return fmt.Errorf("clear list shares: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.Exec(
				`INSERT INTO list_family_shares (list_id, family_id) VALUES (?, ?) ON CONFLICT (list_id, family_id) DO NOTHING`,
				id, familyID,
			); err != nil {
				return fmt.Errorf("recreate list share: %w", err)
			}
		}
		return nil
	})
}
