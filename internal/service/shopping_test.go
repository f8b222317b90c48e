package service

import (
	"testing"

	"plantracker/internal/model"
)

func TestCreateShoppingItemDefaults(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeShopping)
	svc := NewShopping(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateShoppingItemInput{Title: "Milk 2%"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", it.Quantity)
	}
	if it.NormalizedKey != "milk 2" {
		t.Errorf("normalized key = %q, want %q", it.NormalizedKey, "milk 2")
	}
	if it.IsChecked {
		t.Error("new item is checked")
	}

	_, err = svc.Create(owner.ID, list.ID, CreateShoppingItemInput{})
	wantBadRequest(t, err, "title is required")
}

func TestCreateShoppingItemTitleFromProduct(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeShopping)
	p := f.product(t, owner.ID, "Oat milk")
	svc := NewShopping(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateShoppingItemInput{ProductID: &p.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if it.Title != "Oat milk" {
		t.Errorf("title = %q, want backfilled from product", it.Title)
	}
	if it.ProductID == nil || *it.ProductID != p.ID {
		t.Error("product reference not stored")
	}
}

func TestCreateShoppingItemProductEligibility(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	other := f.user(t, "2", "Other")
	svc := NewShopping(f.db, f.listAccess)

	personal := f.list(t, owner.ID, model.ListTypeShopping)
	theirs := f.product(t, other.ID, "Their cheese")

	_, err := svc.Create(owner.ID, personal.ID, CreateShoppingItemInput{ProductID: strPtr("missing")})
	wantBadRequest(t, err, "Product not found")

	// On a personal list only the owner's products may be referenced.
	_, err = svc.Create(owner.ID, personal.ID, CreateShoppingItemInput{ProductID: &theirs.ID})
	wantBadRequest(t, err, "Product must belong to current user")

	// A shared list accepts the product once it is shared to one of the
	// list's families.
	fam := f.family(t, owner.ID)
	f.member(t, fam.ID, other.ID, model.RoleAdmin)
	shared := f.list(t, owner.ID, model.ListTypeShopping)
	f.shareList(t, shared.ID, fam.ID)

	_, err = svc.Create(owner.ID, shared.ID, CreateShoppingItemInput{ProductID: &theirs.ID})
	wantBadRequest(t, err, "Product is not available for this list")

	if err := f.products.Share(theirs.ID, fam.ID); err != nil {
		t.Fatalf("share product: %v", err)
	}
	if _, err := svc.Create(owner.ID, shared.ID, CreateShoppingItemInput{ProductID: &theirs.ID}); err != nil {
		t.Errorf("create with shared product: %v", err)
	}
}

func TestUpdateShoppingItemPartial(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	list := f.list(t, owner.ID, model.ListTypeShopping)
	svc := NewShopping(f.db, f.listAccess)

	it, err := svc.Create(owner.ID, list.ID, CreateShoppingItemInput{Title: "Milk", Quantity: intPtr(2)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Update(owner.ID, list.ID, it.ID, UpdateShoppingItemInput{Title: strPtr("Oat Milk")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Oat Milk" {
		t.Errorf("title = %q, want %q", got.Title, "Oat Milk")
	}
	if got.NormalizedKey != "oat milk" {
		t.Errorf("normalized key = %q, want %q", got.NormalizedKey, "oat milk")
	}
	if got.Quantity != 2 {
		t.Errorf("quantity = %d, want untouched 2", got.Quantity)
	}

	_, err = svc.Update(owner.ID, list.ID, "missing", UpdateShoppingItemInput{})
	wantBadRequest(t, err, "Item not found")
}

func TestShoppingListWriteRequiresAdminRole(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "1", "Owner")
	reader := f.user(t, "2", "Reader")
	svc := NewShopping(f.db, f.listAccess)

	fam := f.family(t, owner.ID)
	f.member(t, fam.ID, reader.ID, model.RoleReader)
	list := f.list(t, owner.ID, model.ListTypeShopping)
	f.shareList(t, list.ID, fam.ID)

	if _, err := svc.List(reader.ID, list.ID); err != nil {
		t.Errorf("reader list: %v", err)
	}
	_, err := svc.Create(reader.ID, list.ID, CreateShoppingItemInput{Title: "Milk"})
	wantForbidden(t, err, "Write access requires family admin role")
}
