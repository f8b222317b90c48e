package normalize

import "testing"

func TestKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Milk", "milk"},
		{"  Milk  ", "milk"},
		{"MILK 2%", "milk 2"},
		{"🥛 Milk", "milk"},
		{"coffee,  beans!!", "coffee beans"},
		{"Молоко", "молоко"},
		{"a-b-c", "a b c"},
		{"", ""},
		{"🎉🎉", ""},
	}
	for _, c := range cases {
		if got := Key(c.in); got != c.want {
			t.Errorf("Key(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestKeyEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"Milk", "milk!"},
		{"🍞 Bread", "bread"},
		{"green  tea", "Green Tea"},
	}
	for _, p := range pairs {
		if Key(p[0]) != Key(p[1]) {
			t.Errorf("Key(%q) = %q, Key(%q) = %q, want equal", p[0], Key(p[0]), p[1], Key(p[1]))
		}
	}
}
