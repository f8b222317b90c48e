package service

import (
	"strings"
	"testing"

	"plantracker/internal/model"
)

type fakeNotifier struct {
	telegramIDs []string
	text        string
}

func (n *fakeNotifier) SendMessage(telegramID, text string) error {
	n.telegramIDs = append(n.telegramIDs, telegramID)
	n.text = text
	return nil
}

func TestFormatShoppingList(t *testing.T) {
	exact := model.Price{Type: model.PriceTypeExact, Currency: strPtr("EUR"), Min: floatPtr(2.5)}
	ranged := model.Price{Type: model.PriceTypeRange, Currency: strPtr("EUR"), Min: floatPtr(1), Max: floatPtr(2)}

	list := &model.List{Name: "Groceries"}
	products := map[string]*model.Product{
		"p1": {ID: "p1", DefaultPrice: exact},
		"p2": {ID: "p2", DefaultPrice: ranged},
	}
	items := []*model.ShoppingItem{
		{ItemCore: model.ItemCore{Title: "Milk"}, ProductID: strPtr("p1"), Quantity: 2},
		{ItemCore: model.ItemCore{Title: "Bread", IsChecked: true}, ProductID: strPtr("p2"), Quantity: 1},
		{ItemCore: model.ItemCore{Title: "Napkins"}, Quantity: 1},
	}

	got := FormatShoppingList(list, items, products)
	want := "Groceries\n\n[ ] Milk x2\n[x] Bread\n[ ] Napkins\n\nTotal: 6 - 7 EUR"
	if got != want {
		t.Errorf("rendered list:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatShoppingListExactTotal(t *testing.T) {
	price := model.Price{Type: model.PriceTypeExact, Currency: strPtr("USD"), Min: floatPtr(1.25)}
	list := &model.List{Name: "Corner shop"}
	products := map[string]*model.Product{"p1": {ID: "p1", DefaultPrice: price}}
	items := []*model.ShoppingItem{
		{ItemCore: model.ItemCore{Title: "Gum"}, ProductID: strPtr("p1"), Quantity: 2},
	}

	got := FormatShoppingList(list, items, products)
	if !strings.HasSuffix(got, "Total: 2.50 USD") {
		t.Errorf("rendered list:\n%s\nwant exact total line", got)
	}
}

func TestFormatShoppingListWithoutPrices(t *testing.T) {
	list := &model.List{Name: "Errands"}
	items := []*model.ShoppingItem{
		{ItemCore: model.ItemCore{Title: "Stamps"}, Quantity: 1},
	}

	got := FormatShoppingList(list, items, nil)
	if strings.Contains(got, "Total") {
		t.Errorf("rendered list:\n%s\nwant no total line", got)
	}
}

func TestFormatTaskList(t *testing.T) {
	list := &model.List{Name: "Chores"}
	items := []*model.TaskItem{
		{ItemCore: model.ItemCore{Title: "Vacuum"}, DurationMinutes: intPtr(90)},
		{ItemCore: model.ItemCore{Title: "Dishes", IsChecked: true}},
	}

	got := FormatTaskList(list, items)
	want := "Chores\n\n[ ] Vacuum (1:30)\n[x] Dishes\n\nTotal duration: 1:30"
	if got != want {
		t.Errorf("rendered list:\n%s\nwant:\n%s", got, want)
	}
}

func TestSendToExplicitRecipients(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "100", "Owner")
	member := f.user(t, "200", "Member")
	fam := f.family(t, owner.ID)
	f.member(t, fam.ID, member.ID, model.RoleReader)
	list := f.list(t, owner.ID, model.ListTypeShopping)
	f.shareList(t, list.ID, fam.ID)

	shopping := NewShopping(f.db, f.listAccess)
	if _, err := shopping.Create(owner.ID, list.ID, CreateShoppingItemInput{Title: "Milk"}); err != nil {
		t.Fatalf("create item: %v", err)
	}

	notifier := &fakeNotifier{}
	svc := NewSendList(f.db, f.listAccess, notifier)

	// Duplicates and the sender itself collapse to one delivery.
	sent, err := svc.Send(owner.ID, list.ID, SendInput{
		FamilyID:         fam.ID,
		RecipientUserIDs: []string{member.ID, member.ID, owner.ID},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	if len(notifier.telegramIDs) != 1 || notifier.telegramIDs[0] != member.TelegramID {
		t.Errorf("telegram ids = %v, want [%s]", notifier.telegramIDs, member.TelegramID)
	}
	if !strings.Contains(notifier.text, "Milk") {
		t.Errorf("message = %q, want item line", notifier.text)
	}
}

func TestSendAllExceptMe(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "100", "Owner")
	first := f.user(t, "200", "First")
	second := f.user(t, "300", "Second")
	fam := f.family(t, owner.ID)
	f.member(t, fam.ID, first.ID, model.RoleReader)
	f.member(t, fam.ID, second.ID, model.RoleReader)
	list := f.list(t, owner.ID, model.ListTypeShopping)
	f.shareList(t, list.ID, fam.ID)

	notifier := &fakeNotifier{}
	svc := NewSendList(f.db, f.listAccess, notifier)

	sent, err := svc.Send(owner.ID, list.ID, SendInput{FamilyID: fam.ID, AllExceptMe: true})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}

	_, err = svc.Send(owner.ID, list.ID, SendInput{
		FamilyID:         fam.ID,
		AllExceptMe:      true,
		RecipientUserIDs: []string{first.ID},
	})
	wantBadRequest(t, err, "recipientUserIds must be omitted when allExceptMe=true")
}

func TestSendValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "100", "Owner")
	member := f.user(t, "200", "Member")
	stranger := f.user(t, "300", "Stranger")
	fam := f.family(t, owner.ID)
	f.member(t, fam.ID, member.ID, model.RoleReader)
	list := f.list(t, owner.ID, model.ListTypeShopping)

	svc := NewSendList(f.db, f.listAccess, &fakeNotifier{})

	_, err := svc.Send(owner.ID, list.ID, SendInput{FamilyID: fam.ID, AllExceptMe: true})
	wantForbidden(t, err, "List is not shared to this family")

	f.shareList(t, list.ID, fam.ID)

	_, err = svc.Send(owner.ID, list.ID, SendInput{FamilyID: fam.ID, RecipientUserIDs: []string{stranger.ID}})
	wantBadRequest(t, err, "Some recipients are not family members")

	_, err = svc.Send(owner.ID, list.ID, SendInput{FamilyID: fam.ID, RecipientUserIDs: []string{owner.ID}})
	wantBadRequest(t, err, "No recipients")

	otherFam := f.family(t, stranger.ID)
	f.shareList(t, list.ID, otherFam.ID)
	_, err = svc.Send(owner.ID, list.ID, SendInput{FamilyID: otherFam.ID, AllExceptMe: true})
	wantForbidden(t, err, "Not a family member")
}
