package service

import (
	"database/sql"
	"testing"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/database"
	"plantracker/internal/model"
	"plantracker/internal/store"
)

// fixture wires the stores and access checkers most service tests need
// over a fresh in-memory database.
type fixture struct {
	db         *sql.DB
	listAccess *access.Lists
	famAccess  *access.Families
	users      *store.UserStore
	families   *store.FamilyStore
	lists      *store.ListStore
	products   *store.ProductStore
	templates  *store.TemplateStore
	items      *store.ShoppingItemStore
	taskItems  *store.TaskItemStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &fixture{
		db:         db,
		listAccess: access.NewLists(db),
		famAccess:  access.NewFamilies(db),
		users:      store.NewUserStore(db),
		families:   store.NewFamilyStore(db),
		lists:      store.NewListStore(db),
		products:   store.NewProductStore(db),
		templates:  store.NewTemplateStore(db),
		items:      store.NewShoppingItemStore(db),
		taskItems:  store.NewTaskItemStore(db),
	}
}

func (f *fixture) user(t *testing.T, telegramID, name string) *model.User {
	t.Helper()
	u, err := f.users.Upsert(telegramID, name, "", "", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) family(t *testing.T, creatorID string) *model.Family {
	t.Helper()
	fam, err := f.families.Create("Home", creatorID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return fam
}

func (f *fixture) member(t *testing.T, familyID, userID, role string) {
	t.Helper()
	if _, err := f.families.AddMember(familyID, userID, role); err != nil {
		t.Fatalf("add member: %v", err)
	}
}

func (f *fixture) list(t *testing.T, ownerID, listType string) *model.List {
	t.Helper()
	l, err := f.lists.Create(&model.List{
		OwnerID:  ownerID,
		Type:     listType,
		Name:     "Test list",
		SortMode: model.SortModeCreatedAt,
	})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	return l
}

func (f *fixture) shareList(t *testing.T, listID, familyID string) {
	t.Helper()
	if err := f.lists.Share(listID, familyID); err != nil {
		t.Fatalf("share list: %v", err)
	}
}

func (f *fixture) product(t *testing.T, ownerID, title string) *model.Product {
	t.Helper()
	svc := NewProducts(f.db, f.famAccess)
	p, err := svc.Create(ownerID, ProductInput{Title: title})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func (f *fixture) template(t *testing.T, ownerID, title string, items ...TemplateItemInput) *model.Template {
	t.Helper()
	svc := NewTemplates(f.db, f.famAccess)
	tpl, err := svc.Create(ownerID, TemplateInput{Title: title})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if len(items) > 0 {
		tpl, err = svc.AddItems(ownerID, tpl.ID, items)
		if err != nil {
			t.Fatalf("add template items: %v", err)
		}
	}
	return tpl
}

func wantBadRequest(t *testing.T, err error, msg string) {
	t.Helper()
	if !apperr.IsBadRequest(err) {
		t.Fatalf("err = %v, want bad request", err)
	}
	if err.Error() != msg {
		t.Errorf("message = %q, want %q", err.Error(), msg)
	}
}

func wantNotFound(t *testing.T, err error, msg string) {
	t.Helper()
	if !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want not found", err)
	}
	if err.Error() != msg {
		t.Errorf("message = %q, want %q", err.Error(), msg)
	}
}

func wantForbidden(t *testing.T, err error, msg string) {
	t.Helper()
	if !apperr.IsForbidden(err) {
		t.Fatalf("err = %v, want forbidden", err)
	}
	if err.Error() != msg {
		t.Errorf("message = %q, want %q", err.Error(), msg)
	}
}

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(v float64) *float64 { return &v }
