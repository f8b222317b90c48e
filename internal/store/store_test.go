package store

import (
	"database/sql"
	"errors"
	"testing"

	"plantracker/internal/database"
)

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, c := range cases {
		if got := placeholders(c.n); got != c.want {
			t.Errorf("placeholders(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestColsWithPrefix(t *testing.T) {
	got := colsWithPrefix("id, owner_id, name", "l")
	want := "l.id, l.owner_id, l.name"
	if got != want {
		t.Errorf("colsWithPrefix = %q, want %q", got, want)
	}
}

func TestTagsRoundTrip(t *testing.T) {
	cases := [][]string{
		nil,
		{},
		{"weekly", "food"},
	}
	for _, tags := range cases {
		got := unmarshalTags(marshalTags(tags))
		if len(got) != len(tags) {
			t.Errorf("tags %v round-tripped to %v", tags, got)
			continue
		}
		for i := range tags {
			if got[i] != tags[i] {
				t.Errorf("tags %v round-tripped to %v", tags, got)
				break
			}
		}
	}

	if got := unmarshalTags("not json"); len(got) != 0 {
		t.Errorf("unmarshalTags of garbage = %v, want empty", got)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()

	boom := errors.New("boom")
	err = InTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			`INSERT INTO users (id, telegram_id, first_name) VALUES ('u1', '1', 'Alice')`,
		); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the callback error", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("users = %d, want rollback to 0", count)
	}
}
