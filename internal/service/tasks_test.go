package service

import (
	"testing"

	"plantracker/internal/model"
)

func TestCreateTaskItem(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeTasks)
	svc := NewTasks(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateTaskItemInput{
		Title:           "Vacuum",
		DurationMinutes: intPtr(45),
		RepeatEveryDays: intPtr(7),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.DurationMinutes == nil || *it.DurationMinutes != 45 {
		t.Errorf("duration = %v, want 45", it.DurationMinutes)
	}
	if it.SortIndex != 1 {
		t.Errorf("sort index = %d, want 1", it.SortIndex)
	}

	_, err = svc.Create(owner.ID, list.ID, CreateTaskItemInput{})
	wantBadRequest(t, err, "title is required")
}

func TestTaskItemToggleAndExpiry(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeTasks)
	svc := NewTasks(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateTaskItemInput{Title: "Water plants", RepeatEveryDays: intPtr(3)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The shared lifecycle drives task items exactly like shopping
	// items: toggling checks the task and an elapsed repeat resets it.
	checked, err := svc.Toggle(owner.ID, list.ID, it.ID, true)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !checked.IsChecked || checked.CheckedAt == nil {
		t.Fatal("task not checked")
	}

	past := checked.CheckedAt.AddDate(0, 0, -4)
	if _, err := f.taskItems.SetChecked(it.ID, true, &past, checked.SortIndex); err != nil {
		t.Fatalf("backdate checkedAt: %v", err)
	}

	items, err := svc.List(owner.ID, list.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if items[0].IsChecked {
		t.Error("expired task still checked")
	}
}

func TestUpdateTaskItem(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeTasks)
	svc := NewTasks(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateTaskItemInput{Title: "Vacuum"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(owner.ID, list.ID, it.ID, UpdateTaskItemInput{DurationMinutes: intPtr(30)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Vacuum" {
		t.Errorf("title = %q, want untouched", got.Title)
	}
	if got.DurationMinutes == nil || *got.DurationMinutes != 30 {
		t.Errorf("duration = %v, want 30", got.DurationMinutes)
	}
}
