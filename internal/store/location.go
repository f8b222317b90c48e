package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type LocationStore struct {
	db *sql.DB
	q  Querier
}

func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db, q: db}
}

const locationCols = `id, owner_id, title, normalized_key, note, sort_index, created_at, updated_at`

func scanLocation(scanner interface{ Scan(...any) error }) (*model.Location, error) {
	var l model.Location
	err := scanner.Scan(
		&l.ID, &l.OwnerID, &l.Title, &l.NormalizedKey, &l.Note,
		&l.SortIndex, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (s *LocationStore) GetByID(id string) (*model.Location, error) {
	row := s.q.QueryRow(`SELECT `+locationCols+` FROM locations WHERE id = ?`, id)
	l, err := scanLocation(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (s *LocationStore) Create(l *model.Location) (*model.Location, error) {
	id := NewID()
	_, err := s.q.Exec(
		`INSERT INTO locations (id, owner_id, title, normalized_key, note) VALUES (?, ?, ?, ?, ?)`,
		id, l.OwnerID, l.Title, l.NormalizedKey, l.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return s.GetByID(id)
}

func (s *LocationStore) Update(l *model.Location) (*model.Location, error) {
	_, err := s.q.Exec(
		`UPDATE locations SET title = ?, normalized_key = ?, note = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		l.Title, l.NormalizedKey, l.Note, l.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}
	return s.GetByID(l.ID)
}

// Delete removes the location with its shares and product links in one
// transaction.
func (s *LocationStore) Delete(id string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for _, stmt := range []string{
			`DELETE FROM location_family_shares WHERE location_id = ?`,
			`DELETE FROM product_default_locations WHERE location_id = ?`,
			`DELETE FROM locations WHERE id = ?`,
		} {
			if _, err := tx.Exec(stmt, id); err != nil {
				return fmt.Errorf("delete location: %w", err)
			}
		}
		return nil
	})
}

func (s *LocationStore) collect(rows *sql.Rows) ([]model.Location, error) {
	defer rows.Close()

	var locations []model.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, *l)
	}
	return locations, rows.Err()
}

func (s *LocationStore) ListOwned(ownerID string) ([]model.Location, error) {
	rows, err := s.q.Query(
		`SELECT `+locationCols+` FROM locations WHERE owner_id = ? ORDER BY sort_index ASC, created_at ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return s.collect(rows)
}

func (s *LocationStore) ListSharedToFamily(familyID, excludeOwnerID string) ([]model.Location, error) {
	rows, err := s.q.Query(
		`SELECT `+colsWithPrefix(locationCols, "l")+` FROM locations l
		 JOIN location_family_shares s ON s.location_id = l.id
		 WHERE s.family_id = ? AND l.owner_id != ?
		 ORDER BY s.created_at ASC`,
		familyID, excludeOwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shared locations: %w", err)
	}
	return s.collect(rows)
}

// CountOwned returns how many of ids belong to ownerID.
func (s *LocationStore) CountOwned(ownerID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM locations WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count owned locations: %w", err)
	}
	return count, nil
}

func (s *LocationStore) OwnedIDs(ownerID string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := append([]any{ownerID}, stringArgs(ids)...)
	rows, err := s.q.Query(
		`SELECT id FROM locations WHERE owner_id = ? AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("filter owned locations: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan location id: %w", err)
		}
		owned = append(owned, id)
	}
	return owned, rows.Err()
}

func (s *LocationStore) Share(locationID, familyID string) error {
	_, err := s.q.Exec(
		`INSERT INTO location_family_shares (location_id, family_id) VALUES (?, ?)
		 ON CONFLICT (location_id, family_id) DO NOTHING`,
		locationID, familyID,
	)
	if err != nil {
		return fmt.Errorf("share location: %w", err)
	}
	return nil
}

func (s *LocationStore) Unshare(locationID, familyID string) error {
	_, err := s.q.Exec(
		`DELETE FROM location_family_shares WHERE location_id = ? AND family_id = ?`,
		locationID, familyID,
	)
	if err != nil {
		return fmt.Errorf("unshare location: %w", err)
	}
	return nil
}

func (s *LocationStore) SetSharing(familyID, ownerID string, ids []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`DELETE FROM location_family_shares WHERE family_id = ? AND location_id IN (SELECT id FROM locations WHERE owner_id = ?)`,
			familyID, ownerID,
		); err != nil {
			return fmt.Errorf("clear location shares: %w", err)
		}
		for _, id := range ids {
			if _, err := tx.Exec(
				`INSERT INTO location_family_shares (location_id, family_id) VALUES (?, ?) ON CONFLICT (location_id, family_id) DO NOTHING`,
				id, familyID,
			); err != nil {
				return fmt.Errorf("recreate location share: %w", err)
			}
		}
		return nil
	})
}
