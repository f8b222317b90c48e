package service

import (
	"testing"

	"plantracker/internal/model"
)

func TestTemplateAddItems(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	p := f.product(t, owner.ID, "Oat milk")
	tpl := f.template(t, owner.ID, "Weekly")
	svc := NewTemplates(f.db, f.famAccess)

	got, err := svc.AddItems(owner.ID, tpl.ID, []TemplateItemInput{
		{ProductID: &p.ID},
		{Title: "Bread", Quantity: 2},
	})
	if err != nil {
		t.Fatalf("add items: %v", err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(got.Items))
	}
	if got.Items[0].Title != "Oat milk" {
		t.Errorf("first title = %q, want backfilled from product", got.Items[0].Title)
	}
	if got.Items[0].Quantity != 1 {
		t.Errorf("first quantity = %d, want clamped to 1", got.Items[0].Quantity)
	}
	if got.Items[0].SortIndex != 0 || got.Items[1].SortIndex != 1 {
		t.Errorf("sort indexes = %d, %d, want 0, 1", got.Items[0].SortIndex, got.Items[1].SortIndex)
	}
}

func TestTemplateAddItemsValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	other := f.user(t, "2", "Other")
	theirs := f.product(t, other.ID, "Their cheese")
	tpl := f.template(t, owner.ID, "Weekly")
	svc := NewTemplates(f.db, f.famAccess)

	_, err := svc.AddItems(owner.ID, tpl.ID, nil)
	wantBadRequest(t, err, "items is required")

	_, err = svc.AddItems(owner.ID, tpl.ID, []TemplateItemInput{{}})
	wantBadRequest(t, err, "title is required")

	_, err = svc.AddItems(owner.ID, tpl.ID, []TemplateItemInput{{ProductID: &theirs.ID}})
	wantBadRequest(t, err, "Product must belong to current user")

	_, err = svc.AddItems(owner.ID, tpl.ID, []TemplateItemInput{{
		Title: "Milk",
		Price: model.Price{Type: model.PriceTypeExact, Currency: strPtr("EUR")},
	}})
	wantBadRequest(t, err, "EXACT price requires min")
}

func TestTemplateUpdateAndRemoveItem(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	tpl := f.template(t, owner.ID, "Weekly", TemplateItemInput{Title: "Milk"})
	svc := NewTemplates(f.db, f.famAccess)
	itemID := tpl.Items[0].ID

	got, err := svc.UpdateItem(owner.ID, tpl.ID, itemID, UpdateTemplateItemInput{Quantity: intPtr(4)})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if got.Items[0].Quantity != 4 {
		t.Errorf("quantity = %d, want 4", got.Items[0].Quantity)
	}

	_, err = svc.UpdateItem(owner.ID, tpl.ID, "missing", UpdateTemplateItemInput{})
	wantBadRequest(t, err, "Item not found")

	got, err = svc.RemoveItem(owner.ID, tpl.ID, itemID)
	if err != nil {
		t.Fatalf("remove item: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("items = %d, want 0", len(got.Items))
	}
}

func TestTemplateDeleteManySkipsUnowned(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	other := f.user(t, "2", "Other")
	mine := f.template(t, owner.ID, "Weekly")
	theirs := f.template(t, other.ID, "Private")
	svc := NewTemplates(f.db, f.famAccess)

	err := svc.DeleteMany(owner.ID, nil)
	wantBadRequest(t, err, "templateIds is required")

	if err := svc.DeleteMany(owner.ID, []string{mine.ID, theirs.ID}); err != nil {
		t.Fatalf("delete many: %v", err)
	}

	if got, err := f.templates.GetByID(mine.ID); err != nil || got != nil {
		t.Errorf("own template = %v, %v, want deleted", got, err)
	}
	if got, err := f.templates.GetByID(theirs.ID); err != nil || got == nil {
		t.Errorf("other template = %v, %v, want untouched", got, err)
	}
}
