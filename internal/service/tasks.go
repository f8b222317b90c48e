package service

import (
	"database/sql"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/normalize"
	"plantracker/internal/store"
)

// Tasks manages task-list items.
type Tasks struct {
	*Lifecycle[*model.TaskItem]

	items *store.TaskItemStore
	lists *access.Lists
}

func NewTasks(db *sql.DB, lists *access.Lists) *Tasks {
	items := store.NewTaskItemStore(db)
	return &Tasks{
		Lifecycle: newLifecycle[*model.TaskItem](items, lists),
		items:     items,
		lists:     lists,
	}
}

type CreateTaskItemInput struct {
	Title           string `json:"title"`
	DurationMinutes *int   `json:"durationMinutes"`
	RepeatEveryDays *int   `json:"repeatEveryDays"`
}

type UpdateTaskItemInput struct {
	Title           *string `json:"title"`
	DurationMinutes *int    `json:"durationMinutes"`
	RepeatEveryDays *int    `json:"repeatEveryDays"`
	SortIndex       *int    `json:"sortIndex"`
}

func (s *Tasks) Create(userID, listID string, in CreateTaskItemInput) (*model.TaskItem, error) {
	if _, err := s.lists.Resolve(userID, listID, access.Write); err != nil {
		return nil, err
	}

	if in.Title == "" {
		return nil, apperr.BadRequest("title is required")
	}

	max, err := s.items.MaxSortIndex(listID, false)
	if err != nil {
		return nil, err
	}

	return s.items.Create(&model.TaskItem{
		ItemCore: model.ItemCore{
			ListID:          listID,
			Title:           in.Title,
			NormalizedKey:   normalize.Key(in.Title),
			RepeatEveryDays: in.RepeatEveryDays,
			SortIndex:       max + 1,
		},
		DurationMinutes: in.DurationMinutes,
	})
}

func (s *Tasks) Update(userID, listID, itemID string, in UpdateTaskItemInput) (*model.TaskItem, error) {
	if _, err := s.lists.Resolve(userID, listID, access.Write); err != nil {
		return nil, err
	}

	it, err := s.items.Get(itemID)
	if err != nil {
		return nil, err
	}
	if it == nil || it.ListID != listID {
		return nil, apperr.BadRequest("Item not found")
	}

	if in.Title != nil && *in.Title != "" {
		it.Title = *in.Title
		it.NormalizedKey = normalize.Key(*in.Title)
	}
	if in.DurationMinutes != nil {
		it.DurationMinutes = in.DurationMinutes
	}
	if in.RepeatEveryDays != nil {
		it.RepeatEveryDays = in.RepeatEveryDays
	}
	if in.SortIndex != nil {
		it.SortIndex = *in.SortIndex
	}

	return s.items.Update(it)
}
