// Package service implements the application operations on top of the
// store layer: item lifecycle, list and family management, product and
// template sharing, and template application.
package service

import (
	"fmt"
	"time"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
)

// item is satisfied by *model.ShoppingItem and *model.TaskItem.
type item interface {
	comparable
	Core() *model.ItemCore
}

// itemStore is the store surface the shared lifecycle needs. Both
// ShoppingItemStore and TaskItemStore provide it.
type itemStore[T item] interface {
	Get(id string) (T, error)
	ListByList(listID string) ([]T, error)
	GetMany(ids []string) ([]T, error)
	SetChecked(id string, checked bool, checkedAt *time.Time, sortIndex int) (T, error)
	UncheckMany(ids []string) error
	MaxSortIndex(listID string, checked bool) (int, error)
	Reorder(orderedIDs []string) error
	Delete(id string) error
}

// Lifecycle implements the operations common to shopping and task
// items: listing with the repeat-expiry sweep, checked-state toggling,
// reordering within a checked-group, and removal. Kind-specific
// creation and editing stay in the Shopping and Tasks services.
type Lifecycle[T item] struct {
	items itemStore[T]
	lists *access.Lists
	now   func() time.Time
}

func newLifecycle[T item](items itemStore[T], lists *access.Lists) *Lifecycle[T] {
	return &Lifecycle[T]{items: items, lists: lists, now: time.Now}
}

// List returns the list's items for a user with read access, sweeping
// expired repeats first. A checked item whose repeat interval has
// elapsed since checking is reset to unchecked; the reset is persisted
// and reflected in the returned slice, so callers never observe an
// expired item as checked.
func (l *Lifecycle[T]) List(userID, listID string) ([]T, error) {
	if _, err := l.lists.Resolve(userID, listID, access.Read); err != nil {
		return nil, err
	}

	items, err := l.items.ListByList(listID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	var expired []string
	for _, it := range items {
		if c := it.Core(); c.IsChecked && c.RepeatExpired(now) {
			expired = append(expired, c.ID)
		}
	}
	if len(expired) > 0 {
		if err := l.items.UncheckMany(expired); err != nil {
			return nil, fmt.Errorf("reset expired items: %w", err)
		}
		// Reset items keep their fetched position; the client
		// reorders on its next refresh.
		for _, it := range items {
			if c := it.Core(); c.IsChecked && c.RepeatExpired(now) {
				c.IsChecked = false
				c.CheckedAt = nil
			}
		}
	}

	return items, nil
}

// Toggle sets the item's checked state for a user with write access.
// The item moves to the end of its target checked-group so the two
// orderings stay independent. A same-state toggle is a no-op and keeps
// the current sort index.
func (l *Lifecycle[T]) Toggle(userID, listID, itemID string, checked bool) (T, error) {
	var zero T
	if _, err := l.lists.Resolve(userID, listID, access.Write); err != nil {
		return zero, err
	}

	it, err := l.items.Get(itemID)
	if err != nil {
		return zero, err
	}
	if it == zero || it.Core().ListID != listID {
		return zero, apperr.BadRequest("Item not found")
	}
	if it.Core().IsChecked == checked {
		return it, nil
	}

	max, err := l.items.MaxSortIndex(listID, checked)
	if err != nil {
		return zero, err
	}

	var checkedAt *time.Time
	if checked {
		now := l.now()
		checkedAt = &now
	}
	return l.items.SetChecked(itemID, checked, checkedAt, max+1)
}

// Reorder rewrites the sort indexes of one checked-group to match the
// given order. Every id must belong to the list and every item's state
// must match the checked flag; mixing groups is rejected as a whole,
// never partially applied.
func (l *Lifecycle[T]) Reorder(userID, listID string, orderedIDs []string, checked bool) error {
	if _, err := l.lists.Resolve(userID, listID, access.Write); err != nil {
		return err
	}

	if len(orderedIDs) == 0 {
		return apperr.BadRequest("orderedIds is required")
	}

	items, err := l.items.GetMany(orderedIDs)
	if err != nil {
		return err
	}
	if len(items) != len(orderedIDs) {
		return apperr.BadRequest("Some items do not belong to list")
	}
	for _, it := range items {
		if it.Core().ListID != listID {
			return apperr.BadRequest("Some items do not belong to list")
		}
		if it.Core().IsChecked != checked {
			return apperr.BadRequest("checked-group mismatch")
		}
	}

	return l.items.Reorder(orderedIDs)
}

// Remove deletes the item for a user with write access.
func (l *Lifecycle[T]) Remove(userID, listID, itemID string) error {
	if _, err := l.lists.Resolve(userID, listID, access.Write); err != nil {
		return err
	}

	var zero T
	it, err := l.items.Get(itemID)
	if err != nil {
		return err
	}
	if it == zero || it.Core().ListID != listID {
		return apperr.BadRequest("Item not found")
	}

	return l.items.Delete(itemID)
}
