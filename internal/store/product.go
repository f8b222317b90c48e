package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type ProductStore struct {
	db *sql.DB
	q  Querier
}

func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db, q: db}
}

func (s *ProductStore) WithTx(tx *sql.Tx) *ProductStore {
	return &ProductStore{db: s.db, q: tx}
}

const productCols = `id, owner_id, title, normalized_key, note, quantity_unit, price_type, price_currency, price_min, price_max, sort_index, created_at, updated_at`

func scanProduct(scanner interface{ Scan(...any) error }) (*model.Product, error) {
	var p model.Product
	var currency sql.NullString
	var min, max sql.NullFloat64

	err := scanner.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.NormalizedKey, &p.Note, &p.QuantityUnit,
		&p.DefaultPrice.Type, &currency, &min, &max,
		&p.SortIndex, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if currency.Valid {
		p.DefaultPrice.Currency = &currency.String
	}
	if min.Valid {
		p.DefaultPrice.Min = &min.Float64
	}
	if max.Valid {
		p.DefaultPrice.Max = &max.Float64
	}
	return &p, nil
}

func (s *ProductStore) defaultLocationIDs(productID string) ([]string, error) {
	rows, err := s.q.Query(
		`SELECT location_id FROM product_default_locations WHERE product_id = ?`,
		productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list default locations: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan location id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *ProductStore) GetByID(id string) (*model.Product, error) {
	row := s.q.QueryRow(`SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}

	p.DefaultLocationIDs, err = s.defaultLocationIDs(id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts the product and its default-location links in one
// transaction.
func (s *ProductStore) Create(p *model.Product) (*model.Product, error) {
	id := NewID()

	err := InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO products (id, owner_id, title, normalized_key, note, quantity_unit, price_type, price_currency, price_min, price_max) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, p.OwnerID, p.Title, p.NormalizedKey, p.Note, p.QuantityUnit,
			p.DefaultPrice.Type, p.DefaultPrice.Currency, p.DefaultPrice.Min, p.DefaultPrice.Max,
		); err != nil {
			return fmt.Errorf("insert product: %w", err)
		}
		for _, locID := range p.DefaultLocationIDs {
			if _, err := tx.Exec(
				`INSERT INTO product_default_locations (product_id, location_id) VALUES (?, ?)`,
				id, locID,
			); err != nil {
				return fmt.Errorf("insert default location: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

// Update rewrites the product's mutable fields and replaces its
// default-location links in one transaction.
func (s *ProductStore) Update(p *model.Product) (*model.Product, error) {
	err := InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`UPDATE products SET title = ?, normalized_key = ?, note = ?, quantity_unit = ?, price_type = ?, price_currency = ?, price_min = ?, price_max = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			p.Title, p.NormalizedKey, p.Note, p.QuantityUnit,
			p.DefaultPrice.Type, p.DefaultPrice.Currency, p.DefaultPrice.Min, p.DefaultPrice.Max, p.ID,
		); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM product_default_locations WHERE product_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clear default locations: %w", err)
		}
		for _, locID := range p.DefaultLocationIDs {
			if _, err := tx.Exec(
				`INSERT INTO product_default_locations (product_id, location_id) VALUES (?, ?)`,
				p.ID, locID,
			); err != nil {
				return fmt.Errorf("insert default location: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(p.ID)
}

// Delete removes the product with its shares and location links in one
// transaction. List items referencing it keep their title and drop the
// reference.
func (s *ProductStore) Delete(id string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`UPDATE shopping_items SET product_id = NULL WHERE product_id = ?`,
			`DELETE FROM product_family_shares WHERE product_id = ?`,
			`DELETE FROM product_default_locations WHERE product_id = ?`,
			`DELETE FROM products WHERE id = ?`,
		} {
			if _, err := tx.Exec(stmt, id); err != nil {
				return fmt.Errorf("delete product: %w", err)
			}
		}
		return nil
	})
}

func (s *ProductStore) collect(rows *sql.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range products {
		ids, err := s.defaultLocationIDs(products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].DefaultLocationIDs = ids
	}
	return products, nil
}

func (s *ProductStore) ListOwned(ownerID string) ([]model.Product, error) {
	rows, err := s.q.Query(
		`SELECT `+productCols+` FROM products WHERE owner_id = ? ORDER BY sort_index ASC, created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return s.collect(rows)
}

// ListSharedToFamily returns products shared to the family by other
// owners, oldest share first.
func (s *ProductStore) ListSharedToFamily(familyID, excludeOwnerID string) ([]model.Product, error) {
	rows, err := s.q.Query(
		`SELECT `+colsWithPrefix(productCols, "p")+` FROM products p
		 JOIN product_family_shares s ON s.product_id = p.id
		 WHERE s.family_id = ? AND p.owner_id != ?
		 ORDER BY s.created_at ASC`,
		familyID, excludeOwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shared products: %w", err)
	}
	return s.collect(rows)
}

// OwnedIDs filters ids down to those owned by ownerID.
func (s *ProductStore) OwnedIDs(ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	rows, err := s.q.Query(
		`SELECT id FROM products WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("filter owned products: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product id: %w", err)
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

// CountOwned returns how many of ids belong to ownerID.
func (s *ProductStore) CountOwned(ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM products WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owned products: %w", err)
	}
	return count, nil
}

// SharedToAnyFamily reports whether the product is shared to at least
// one of the given families.
func (s *ProductStore) SharedToAnyFamily(productID string, familyIDs []string) (bool, error) {
	if len(familyIDs) == 0 {
		return false, nil
	}

	args := append([]any{productID}, stringArgs(familyIDs)...)
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM product_family_shares WHERE product_id = ? AND family_id IN (`+placeholders(len(familyIDs))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count product shares: %w", err)
	}
	return count > 0, nil
}

func (s *ProductStore) Share(productID, familyID string) error {
	_, err := s.q.Exec(
		`INSERT INTO product_family_shares (product_id, family_id) VALUES (?, ?)
		 ON CONFLICT (product_id, family_id) DO NOTHING`,
		productID, familyID,
	)
	if err != nil {
		return fmt.Errorf("share product: %w", err)
	}
	return nil
}

func (s *ProductStore) Unshare(productID, familyID string) error {
	_, err := s.q.Exec(
		`DELETE FROM product_family_shares WHERE product_id = ? AND family_id = ?`,
		productID, familyID,
	)
	if err != nil {
		return fmt.Errorf("unshare product: %w", err)
	}
	return nil
}

// SetSharing replaces the family's share set among the owner's products
// in one transaction.
func (s *ProductStore) SetSharing(familyID, ownerID string, ids []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`DELETE FROM product_family_shares WHERE family_id = ? AND product_id IN (SELECT id FROM products WHERE owner_id = ?)`,
			familyID, ownerID,
		); err != nil {
			return fmt.Errorf("clear product shares: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.Exec(
				`INSERT INTO product_family_shares (product_id, family_id) VALUES (?, ?) ON CONFLICT (product_id, family_id) DO NOTHING`,
				id, familyID,
			); err != nil {
				return fmt.Errorf("recreate product share: %w", err)
			}
		}
		return nil
	})
}
