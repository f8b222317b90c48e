package store

import (
	"database/sql"
	"fmt"

	"plantracker/internal/model"
)

type UserStore struct {
	db *sql.DB
	q  Querier
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db, q: db}
}

const userCols = `id, telegram_id, first_name, last_name, username, photo_url, created_at, updated_at`

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.LastName,
		&u.Username, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	row := s.q.QueryRow(`SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByTelegramID(telegramID string) (*model.User, error) {
	row := s.q.QueryRow(`SELECT `+userCols+` FROM users WHERE telegram_id = ?`, telegramID)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return u, nil
}

// Upsert creates the user row for a Telegram identity or refreshes its
// profile fields. Called on every authenticated first contact.
func (s *UserStore) Upsert(telegramID, firstName, lastName, username, photoURL string) (*model.User, error) {
	existing, err := s.GetByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		id := NewID()
		_, err = s.q.Exec(
			`INSERT INTO users (id, telegram_id, first_name, last_name, username, photo_url) VALUES (?, ?, ?, ?, ?, ?)`,
			id, telegramID, firstName, lastName, username, photoURL,
		)
		if err != nil {
			return nil, fmt.Errorf("insert user: %w", err)
		}
		return s.GetByID(id)
	}

	_, err = s.q.Exec(
		`UPDATE users SET first_name = ?, last_name = ?, username = ?, photo_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		firstName, lastName, username, photoURL, existing.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetByID(existing.ID)
}

func (s *UserStore) GetMany(ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.q.Query(
		`SELECT `+userCols+` FROM users WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
