package service

import (
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"plantracker/internal/access"
	"plantracker/internal/apperr"
	"plantracker/internal/model"
	"plantracker/internal/notify"
	"plantracker/internal/store"
)

// SendList renders a list as a text message and delivers it to family
// members over Telegram.
type SendList struct {
	lists    *access.Lists
	families *store.FamilyStore
	shopping *store.ShoppingItemStore
	tasks    *store.TaskItemStore
	products *store.ProductStore
	users    *store.UserStore
	notifier notify.Notifier
}

func NewSendList(db *sql.DB, lists *access.Lists, notifier notify.Notifier) *SendList {
	return &SendList{
		lists:    lists,
		families: store.NewFamilyStore(db),
		shopping: store.NewShoppingItemStore(db),
		tasks:    store.NewTaskItemStore(db),
		products: store.NewProductStore(db),
		users:    store.NewUserStore(db),
		notifier: notifier,
	}
}

type SendInput struct {
	FamilyID         string   `json:"familyId"`
	RecipientUserIDs []string `json:"recipientUserIds"`
	AllExceptMe      bool     `json:"allExceptMe"`
}

// Send formats the list and messages the chosen members of a family the
// list is shared to. Recipients come either from recipientUserIds or,
// with allExceptMe, from the full member roster. The sender is never
// messaged. Returns how many Telegram accounts were notified.
func (s *SendList) Send(userID, listID string, in SendInput) (int, error) {
	list, err := s.lists.Resolve(userID, listID, access.Read)
	if err != nil {
		return 0, err
	}

	shared := false
	for _, id := range list.FamilyIDs {
		if id == in.FamilyID {
			shared = true
			break
		}
	}
	if !shared {
		return 0, apperr.Forbidden("List is not shared to this family")
	}
	me, err := s.families.GetMember(in.FamilyID, userID)
	if err != nil {
		return 0, err
	}
	if me == nil {
		return 0, apperr.Forbidden("Not a family member")
	}

	recipientIDs, err := s.resolveRecipients(userID, in)
	if err != nil {
		return 0, err
	}

	recipients, err := s.users.GetMany(recipientIDs)
	if err != nil {
		return 0, err
	}
	if len(recipients) != len(recipientIDs) {
		return 0, apperr.BadRequest("Some recipients do not exist")
	}
	seen := map[string]bool{}
	telegramIDs := make([]string, 0, len(recipients))
	for _, u := range recipients {
		if u.TelegramID == "" || seen[u.TelegramID] {
			continue
		}
		seen[u.TelegramID] = true
		telegramIDs = append(telegramIDs, u.TelegramID)
	}
	if len(telegramIDs) == 0 {
		return 0, apperr.BadRequest("Recipients have no telegramId")
	}

	text, err := s.render(list)
	if err != nil {
		return 0, err
	}
	for _, tg := range telegramIDs {
		if err := s.notifier.SendMessage(tg, text); err != nil {
			return 0, err
		}
	}
	return len(telegramIDs), nil
}

// resolveRecipients dedups the requested ids, drops the sender and
// verifies everyone left belongs to the family.
func (s *SendList) resolveRecipients(userID string, in SendInput) ([]string, error) {
	members, err := s.families.ListMembers(in.FamilyID)
	if err != nil {
		return nil, err
	}
	memberSet := make(map[string]bool, len(members))
	for _, m := range members {
		memberSet[m.UserID] = true
	}

	var ids []string
	if in.AllExceptMe {
		if len(in.RecipientUserIDs) > 0 {
			return nil, apperr.BadRequest("recipientUserIds must be omitted when allExceptMe=true")
		}
		for _, m := range members {
			if m.UserID != userID {
				ids = append(ids, m.UserID)
			}
		}
	} else {
		ids = in.RecipientUserIDs
	}

	seen := map[string]bool{}
	recipients := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == userID || seen[id] {
			continue
		}
		seen[id] = true
		recipients = append(recipients, id)
	}
	if len(recipients) == 0 {
		return nil, apperr.BadRequest("No recipients")
	}
	for _, id := range recipients {
		if !memberSet[id] {
			return nil, apperr.BadRequest("Some recipients are not family members")
		}
	}
	return recipients, nil
}

func (s *SendList) render(list *model.List) (string, error) {
	if list.Type == model.ListTypeTasks {
		items, err := s.tasks.ListByList(list.ID)
		if err != nil {
			return "", err
		}
		return FormatTaskList(list, items), nil
	}

	items, err := s.shopping.ListByList(list.ID)
	if err != nil {
		return "", err
	}

	products := map[string]*model.Product{}
	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		if _, ok := products[*it.ProductID]; ok {
			continue
		}
		p, err := s.products.GetByID(*it.ProductID)
		if err != nil {
			return "", err
		}
		if p != nil {
			products[*it.ProductID] = p
		}
	}
	return FormatShoppingList(list, items, products), nil
}

func checkMark(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// FormatShoppingList renders a shopping list with one line per item and
// a per-currency price total computed from product default prices.
func FormatShoppingList(list *model.List, items []*model.ShoppingItem, products map[string]*model.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", list.Name)

	type total struct{ min, max float64 }
	totals := map[string]*total{}

	for _, it := range items {
		fmt.Fprintf(&b, "%s %s", checkMark(it.IsChecked), it.Title)
		if it.Quantity > 1 {
			fmt.Fprintf(&b, " x%d", it.Quantity)
		}
		b.WriteString("\n")

		if it.ProductID == nil {
			continue
		}
		p, ok := products[*it.ProductID]
		if !ok || p.DefaultPrice.Type == model.PriceTypeNone || p.DefaultPrice.Currency == nil {
			continue
		}
		price := p.DefaultPrice
		t, ok := totals[*price.Currency]
		if !ok {
			t = &total{}
			totals[*price.Currency] = t
		}
		qty := float64(it.Quantity)
		switch price.Type {
		case model.PriceTypeExact:
			if price.Min != nil {
				t.min += *price.Min * qty
				t.max += *price.Min * qty
			}
		case model.PriceTypeRange:
			if price.Min != nil {
				t.min += *price.Min * qty
			}
			if price.Max != nil {
				t.max += *price.Max * qty
			}
		}
	}

	if len(totals) > 0 {
		currencies := make([]string, 0, len(totals))
		for c := range totals {
			currencies = append(currencies, c)
		}
		sort.Strings(currencies)

		b.WriteString("\n")
		for _, c := range currencies {
			t := totals[c]
			if t.min == t.max {
				fmt.Fprintf(&b, "Total: %s %s\n", formatAmount(t.min), c)
			} else {
				fmt.Fprintf(&b, "Total: %s - %s %s\n", formatAmount(t.min), formatAmount(t.max), c)
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatTaskList renders a task list with durations shown as h:mm and a
// summed total at the bottom.
func FormatTaskList(list *model.List, items []*model.TaskItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", list.Name)

	totalMinutes := 0
	for _, it := range items {
		fmt.Fprintf(&b, "%s %s", checkMark(it.IsChecked), it.Title)
		if it.DurationMinutes != nil && *it.DurationMinutes > 0 {
			m := *it.DurationMinutes
			totalMinutes += m
			fmt.Fprintf(&b, " (%d:%02d)", m/60, m%60)
		}
		b.WriteString("\n")
	}

	if totalMinutes > 0 {
		fmt.Fprintf(&b, "\nTotal duration: %d:%02d", totalMinutes/60, totalMinutes%60)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatAmount(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	return strings.TrimSuffix(s, ".00")
}
