package store

import (
	"database/sql"
	"fmt"
	"time"

	"plantracker/internal/model"
)

type TaskItemStore struct {
	db *sql.DB
	q  Querier
}

func NewTaskItemStore(db *sql.DB) *TaskItemStore {
	return &TaskItemStore{db: db, q: db}
}

func (s *TaskItemStore) WithTx(tx *sql.Tx) *TaskItemStore {
	return &TaskItemStore{db: s.db, q: tx}
}

const taskItemCols = `id, list_id, title, normalized_key, duration_minutes, repeat_every_days, is_checked, checked_at, sort_index, created_at, updated_at`

func scanTaskItem(scanner interface{ Scan(...any) error }) (*model.TaskItem, error) {
	var it model.TaskItem
	var duration, repeat sql.NullInt64
	var checkedAt sql.NullTime
	var checked int

	err := scanner.Scan(
		&it.ID, &it.ListID, &it.Title, &it.NormalizedKey, &duration,
		&repeat, &checked, &checkedAt, &it.SortIndex, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	it.IsChecked = checked != 0
	if duration.Valid {
		v := int(duration.Int64)
		it.DurationMinutes = &v
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

func (s *TaskItemStore) Get(id string) (*model.TaskItem, error) {
	row := s.q.QueryRow(`SELECT `+taskItemCols+` FROM task_items WHERE id = ?`, id)
	it, err := scanTaskItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task item: %w", err)
	}
	return it, nil
}

func (s *TaskItemStore) ListByList(listID string) ([]*model.TaskItem, error) {
	rows, err := s.q.Query(
		`SELECT `+taskItemCols+` FROM task_items WHERE list_id = ? ORDER BY is_checked ASC, sort_index ASC, created_at ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list task items: %w", err)
	}
	defer rows.Close()

	var items []*model.TaskItem
	for rows.Next() {
		it, err := scanTaskItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *TaskItemStore) GetMany(ids []string) ([]*model.TaskItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.q.Query(
		`SELECT `+taskItemCols+` FROM task_items WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("get task items: %w", err)
	}
	defer rows.Close()

	var items []*model.TaskItem
	for rows.Next() {
		it, err := scanTaskItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// SearchByKey finds items within the given lists whose normalized key
// contains the normalized query.
func (s *TaskItemStore) SearchByKey(listIDs []string, key string) ([]*model.TaskItem, error) {
	if len(listIDs) == 0 {
		return nil, nil
	}

	args := append(stringArgs(listIDs), "%"+key+"%")
	rows, err := s.q.Query(
		`SELECT `+taskItemCols+` FROM task_items WHERE list_id IN (`+placeholders(len(listIDs))+`) AND normalized_key LIKE ? ORDER BY is_checked ASC, sort_index ASC, created_at ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("search task items: %w", err)
	}
	defer rows.Close()

	var items []*model.TaskItem
	for rows.Next() {
		it, err := scanTaskItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *TaskItemStore) Create(it *model.TaskItem) (*model.TaskItem, error) {
	id := NewID()
	_, err := s.q.Exec(
		`INSERT INTO task_items (id, list_id, title, normalized_key, duration_minutes, repeat_every_days, sort_index) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, it.ListID, it.Title, it.NormalizedKey, it.DurationMinutes, it.RepeatEveryDays, it.SortIndex,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task item: %w", err)
	}
	return s.Get(id)
}

func (s *TaskItemStore) Update(it *model.TaskItem) (*model.TaskItem, error) {
	_, err := s.q.Exec(
		`UPDATE task_items SET title = ?, normalized_key = ?, duration_minutes = ?, repeat_every_days = ?, sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		it.Title, it.NormalizedKey, it.DurationMinutes, it.RepeatEveryDays, it.SortIndex, it.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task item: %w", err)
	}
	return s.Get(it.ID)
}

func (s *TaskItemStore) SetChecked(id string, checked bool, checkedAt *time.Time, sortIndex int) (*model.TaskItem, error) {
	_, err := s.q.Exec(
		`UPDATE task_items SET is_checked = ?, checked_at = ?, sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		boolToInt(checked), checkedAt, sortIndex, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set checked: %w", err)
	}
	return s.Get(id)
}

func (s *TaskItemStore) UncheckMany(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.q.Exec(
		`UPDATE task_items SET is_checked = 0, checked_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id IN (`+placeholders(len(ids))+`)`,
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("uncheck items: %w", err)
	}
	return nil
}

func (s *TaskItemStore) MaxSortIndex(listID string, checked bool) (int, error) {
	var max int
	err := s.q.QueryRow(
		`SELECT COALESCE(MAX(sort_index), 0) FROM task_items WHERE list_id = ? AND is_checked = ?`,
		listID, boolToInt(checked),
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max sort index: %w", err)
	}
	return max, nil
}

func (s *TaskItemStore) Reorder(orderedIDs []string) error {
	return InTx(s.db, func(tx *sql.Tx) error {
		for i, id := range orderedIDs {
			if _, err := tx.Exec(
				`UPDATE task_items SET sort_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				i+1, id,
			); err != nil {
				return fmt.Errorf("reorder task item: %w", err)
			}
		}
		return nil
	})
}

func (s *TaskItemStore) Delete(id string) error {
	_, err := s.q.Exec(`DELETE FROM task_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task item: %w", err)
	}
	return nil
}
