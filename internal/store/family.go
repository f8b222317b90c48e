package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type FamilyStore struct {
	db *sql.DB
	q  Querier
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db, q: db}
}

// WithTx returns a copy of the store bound to tx.
func (s *FamilyStore) WithTx(tx *sql.Tx) *FamilyStore {
	return &FamilyStore{db: s.db, q: tx}
}

const familyCols = `id, name, created_by_id, created_at, updated_at`

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	err := scanner.Scan(&f.ID, &f.Name, &f.CreatedByID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FamilyStore) GetByID(id string) (*model.Family, error) {
	row := s.q.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

// Create inserts the family and makes creator its first admin, in one
// transaction.
func (s *FamilyStore) Create(name, creatorID string) (*model.Family, error) {
	id := NewID()

	err := InTx(s.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO families (id, name, created_by_id) VALUES (?, ?, ?)`,
			id, name, creatorID,
		); err != nil {
			return fmt.Errorf("insert family: %w", err)
		}
		if _, err := tx.Exec(
			`INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)`,
			id, creatorID, model.RoleAdmin,
		); err != nil {
			return fmt.Errorf("insert creator membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *FamilyStore) UpdateName(id, name string) (*model.Family, error) {
	_, err := s.q.Exec(
		`UPDATE families SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update family: %w", err)
	}
	return s.GetByID(id)
}

// ListByUser returns the families the user belongs to, oldest membership
// first, with the user's role attached.
func (s *FamilyStore) ListByUser(userID string) ([]model.Family, map[string]string, error) {
	rows, err := s.q.Query(
		`SELECT f.id, f.name, f.created_by_id, f.created_at, f.updated_at, m.role
		 FROM family_members m JOIN families f ON f.id = m.family_id
		 WHERE m.user_id = ? ORDER BY m.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("list families: %w", err)
	}
	defer rows.Close()

	var families []model.Family
	roles := make(map[string]string)
	for rows.Next() {
		var f model.Family
		var role string
		if err := rows.Scan(&f.ID, &f.Name, &f.CreatedByID, &f.CreatedAt, &f.UpdatedAt, &role); err != nil {
			return nil, nil, fmt.Errorf("scan family: %w", err)
		}
		families = append(families, f)
		roles[f.ID] = role
	}
	return families, roles, rows.Err()
}

// --- Membership methods ---

func scanMember(scanner interface{ Scan(...any) error }) (*model.FamilyMember, error) {
	var m model.FamilyMember
	err := scanner.Scan(&m.FamilyID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const memberCols = `family_id, user_id, role, created_at`

func (s *FamilyStore) GetMember(familyID, userID string) (*model.FamilyMember, error) {
	row := s.q.QueryRow(
		`SELECT `+memberCols+` FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID,
	)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// MembershipsIn returns the user's membership rows across the given
// families in a single query.
func (s *FamilyStore) MembershipsIn(userID string, familyIDs []string) ([]model.FamilyMember, error) {
	if len(familyIDs) == 0 {
		return nil, nil
	}

	args := append([]any{userID}, stringArgs(familyIDs)...)
	rows, err := s.q.Query(
		`SELECT `+memberCols+` FROM family_members WHERE user_id = ? AND family_id IN (`+placeholders(len(familyIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list memberships: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyStore) ListMembers(familyID string) ([]model.FamilyMember, error) {
	rows, err := s.q.Query(
		`SELECT `+memberCols+` FROM family_members WHERE family_id = ? ORDER BY created_at ASC`,
		familyID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.FamilyMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *FamilyStore) AddMember(familyID, userID, role string) (*model.FamilyMember, error) {
	_, err := s.q.Exec(
		`INSERT INTO family_members (family_id, user_id, role) VALUES (?, ?, ?)
		 ON CONFLICT (family_id, user_id) DO UPDATE SET role = excluded.role`,
		familyID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	return s.GetMember(familyID, userID)
}

func (s *FamilyStore) UpdateMemberRole(familyID, userID, role string) (*model.FamilyMember, error) {
	_, err := s.q.Exec(
		`UPDATE family_members SET role = ? WHERE family_id = ? AND user_id = ?`,
		role, familyID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return s.GetMember(familyID, userID)
}

func (s *FamilyStore) RemoveMember(familyID, userID string) error {
	_, err := s.q.Exec(
		`DELETE FROM family_members WHERE family_id = ? AND user_id = ?`,
		familyID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *FamilyStore) CountAdmins(familyID string) (int, error) {
	var count int
	err := s.q.QueryRow(
		`SELECT COUNT(*) FROM family_members WHERE family_id = ? AND role = ?`,
		familyID, model.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}
