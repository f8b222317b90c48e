package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type TemplateStore struct {
	db *sql.DB
	q  Querier
}

func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db, q: db}
}

func (s *TemplateStore) WithTx(tx *sql.Tx) *TemplateStore {
	return &TemplateStore{db: s.db, q: tx}
}

const templateCols = `id, owner_id, title, normalized_key, note, tags, sort_index, created_at, updated_at`

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.Template, error) {
	var t model.Template
	var tags string
	err := scanner.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.NormalizedKey, &t.Note, &tags,
		&t.SortIndex, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Tags = unmarshalTags(tags)
	return &t, nil
}

const templateItemCols = `id, template_id, product_id, title, quantity, price_type, price_currency, price_min, price_max, sort_index`

func scanTemplateItem(scanner interface{ Scan(...any) error }) (*model.TemplateItem, error) {
	var it model.TemplateItem
	var productID, currency sql.NullString
	var min, max sql.NullFloat64

	err := scanner.Scan(
		&it.ID, &it.TemplateID, &productID, &it.Title, &it.Quantity,
		&it.Price.Type, &currency, &min, &max, &it.SortIndex,
	)
	if err != nil {
		return nil, err
	}

	if productID.Valid {
		it.ProductID = &productID.String
	}
	if currency.Valid {
		it.Price.Currency = &currency.String
	}
	if min.Valid {
		it.Price.Min = &min.Float64
	}
	if max.Valid {
		it.Price.Max = &max.Float64
	}
	return &it, nil
}

func (s *TemplateStore) itemsFor(templateID string) ([]model.TemplateItem, error) {
	rows, err := s.q.Query(
		`SELECT `+templateItemCols+` FROM template_items WHERE template_id = ? ORDER BY sort_index ASC`,
		templateID,
	)
	if err != nil {
		return nil, fmt.Errorf("list template items: %w", err)
	}
	defer rows.Close()

	items := []model.TemplateItem{}
	for rows.Next() {
		it, err := scanTemplateItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// GetByID returns the template with its items loaded, or nil when
// absent.
func (s *TemplateStore) GetByID(id string) (*model.Template, error) {
	row := s.q.QueryRow(`SELECT `+templateCols+` FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}

	t.Items, err = s.itemsFor(id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateStore) Create(t *model.Template) (*model.Template, error) {
	id := NewID()
	_, err := s.q.Exec(
		`INSERT INTO templates (id, owner_id, title, normalized_key, note, tags) VALUES (?, ?, ?, ?, ?, ?)`,
		id, t.OwnerID, t.Title, t.NormalizedKey, t.Note, marshalTags(t.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	return s.GetByID(id)
}

func (s *TemplateStore) Update(t *model.Template) (*model.Template, error) {
	_, err := s.q.Exec(
		`UPDATE templates SET title = ?, normalized_key = ?, note = ?, tags = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		t.Title, t.NormalizedKey, t.Note, marshalTags(t.Tags), t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.GetByID(t.ID)
}

// DeleteMany removes templates with their shares and items in one
// transaction.
func (s *TemplateStore) DeleteMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	ph := placeholders(len(ids))
	args := stringArgs(ids)
	return InTx(s.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM template_family_shares WHERE template_id IN (` + ph + `)`,
			`DELETE FROM template_items WHERE template_id IN (` + ph + `)`,
			`DELETE FROM templates WHERE id IN (` + ph + `)`,
		} {
			if _, err := tx.Exec(stmt, args...); err != nil {
				return fmt.Errorf("delete templates: %w", err)
			}
		}
		return nil
	})
}

func (s *TemplateStore) collect(rows *sql.Rows) ([]model.Template, error) {
	defer rows.Close()

	var templates []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range templates {
		items, err := s.itemsFor(templates[i].ID)
		if err != nil {
			return nil, err
		}
		templates[i].Items = items
	}
	return templates, nil
}

func (s *TemplateStore) ListOwned(ownerID string) ([]model.Template, error) {
	rows, err := s.q.Query(
		`SELECT `+templateCols+` FROM templates WHERE owner_id = ? ORDER BY sort_index ASC, created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return s.collect(rows)
}

func (s *TemplateStore) ListSharedToFamily(familyID, excludeOwnerID string) ([]model.Template, error) {
	rows, err := s.q.Query(
		`SELECT `+colsWithPrefix(templateCols, "t")+` FROM templates t
		 JOIN template_family_shares s ON s.template_id = t.id
		 WHERE s.family_id = ? AND t.owner_id != ?
		 ORDER BY s.created_at ASC`,
		familyID, excludeOwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shared templates: %w", err)
	}
	return s.collect(rows)
}

// ListVisible returns the subset of ids the user can see: templates the
// user owns, plus templates shared to a family the user belongs to.
// Items are loaded, ordered by sort index.
func (s *TemplateStore) ListVisible(userID string, ids []string) ([]model.Template, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append(stringArgs(ids), userID, userID)
	rows, err := s.q.Query(
		`SELECT `+templateCols+` FROM templates
		 WHERE id IN (`+placeholders(len(ids))+`)
		   AND (owner_id = ? OR id IN (
		       SELECT sh.template_id FROM template_family_shares sh
		       JOIN family_members m ON m.family_id = sh.family_id
		       WHERE m.user_id = ?))`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list visible templates: %w", err)
	}
	return s.collect(rows)
}

// SharedToUserFamily reports whether the template is shared to any
// family the user belongs to.
func (s *TemplateStore) SharedToUserFamily(templateID, userID string) (bool, error) {
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM template_family_shares sh
		 JOIN family_members m ON m.family_id = sh.family_id
		 WHERE sh.template_id = ? AND m.user_id = ?`,
		templateID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count template shares: %w", err)
	}
	return count > 0, nil
}

func (s *TemplateStore) Reorder(ownerID string, orderedIDs []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(
				`UPDATE templates SET sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND owner_id = ?`,
				i, id, ownerID,
			); err != nil {
				return fmt.Errorf("reorder template: %w", err)
			}
		}
		return nil
	})
}

// --- Item methods ---

func (s *TemplateStore) MaxItemSortIndex(templateID string) (int, error) {
	var max int
	err := s.q.QueryRow(
		`SELECT COALESCE(MAX(sort_index), -1) FROM template_items WHERE template_id = ?`,
		templateID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max item sort index: %w", err)
	}
	return max, nil
}

func (s *TemplateStore) AddItems(items []model.TemplateItem) error {
	if len(items) == 0 {
		return nil
	}
	return InTx(s.db, func(tx *sql.Tx) error {
		for i := range items {
			it := &items[i]
			if _, err := tx.Exec(
				`INSERT INTO template_items (id, template_id, product_id, title, quantity, price_type, price_currency, price_min, price_max, sort_index) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				NewID(), it.TemplateID, it.ProductID, it.Title, it.Quantity,
				it.Price.Type, it.Price.Currency, it.Price.Min, it.Price.Max, it.SortIndex,
			); err != nil {
				return fmt.Errorf("insert template item: %w", err)
			}
		}
		return nil
	})
}

func (s *TemplateStore) GetItem(itemID, templateID string) (*model.TemplateItem, error) {
	row := s.q.QueryRow(
		`SELECT `+templateItemCols+` FROM template_items WHERE id = ? AND template_id = ?`,
		itemID, templateID,
	)
	it, err := scanTemplateItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template item: %w", err)
	}
	return it, nil
}

func (s *TemplateStore) UpdateItem(it *model.TemplateItem) error {
	_, err := s.q.Exec(
		`UPDATE template_items SET quantity = ?, price_type = ?, price_currency = ?, price_min = ?, price_max = ?, sort_index = ? WHERE id = ? AND template_id = ?`,
		it.Quantity, it.Price.Type, it.Price.Currency, it.Price.Min, it.Price.Max, it.SortIndex,
		it.ID, it.TemplateID,
	)
	if err != nil {
		return fmt.Errorf("update template item: %w", err)
	}
	return nil
}

func (s *TemplateStore) RemoveItem(itemID, templateID string) error {
	_, err := s.q.Exec(
		`DELETE FROM template_items WHERE id = ? AND template_id = ?`,
		itemID, templateID,
	)
	if err != nil {
		return fmt.Errorf("remove template item: %w", err)
	}
	return nil
}

// ProductIDs returns the distinct product ids referenced by the given
// templates' items.
func (s *TemplateStore) ProductIDs(templateIDs []string) ([]string, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}

	rows, err := s.q.Query(
		`SELECT DISTINCT product_id FROM template_items WHERE template_id IN (`+placeholders(len(templateIDs))+`) AND product_id IS NOT NULL`,
		stringArgs(templateIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list template product ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountOwned returns how many of ids belong to ownerID.
func (s *TemplateStore) CountOwned(ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM templates WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owned templates: %w", err)
	}
	return count, nil
}

func (s *TemplateStore) OwnedIDs(ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	rows, err := s.q.Query(
		`SELECT id FROM templates WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("filter owned templates: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan template id: %w", err)
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

func (s *TemplateStore) Share(templateID, familyID string) error {
	_, err := s.q.Exec(
		`INSERT INTO template_family_shares (template_id, family_id) VALUES (?, ?)
		 ON CONFLICT (template_id, family_id) DO NOTHING`,
		templateID, familyID,
	)
	if err != nil {
		return fmt.Errorf("share template: %w", err)
	}
	return nil
}

func (s *TemplateStore) Unshare(templateID, familyID string) error {
	_, err := s.q.Exec(
		`DELETE FROM template_family_shares WHERE template_id = ? AND family_id = ?`,
		templateID, familyID,
	)
	if err != nil {
		return fmt.Errorf("unshare template: %w", err)
	}
	return nil
}

// SetSharing replaces the family's share set among the owner's templates
// in one transaction.
func (s *TemplateStore) SetSharing(familyID, ownerID string, ids []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`DELETE FROM template_family_shares WHERE family_id = ? AND template_id IN (SELECT id FROM templates WHERE owner_id = ?)`,
			familyID, ownerID,
		); err != nil {
			return fmt.Errorf("clear template shares: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.Exec(
				`INSERT INTO template_family_shares (template_id, family_id) VALUES (?, ?) ON CONFLICT (template_id, family_id) DO NOTHING`,
				id, familyID,
			); err != nil {
				return fmt.Errorf("recreate template share: %w", err)
			}
		}
		return nil
	})
}
