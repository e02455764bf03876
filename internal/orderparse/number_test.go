package orderparse

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		fail bool
	}{
		{"100,00", 100, false},
		{"10800,00", 10800, false},
		{"10 800,00", 10800, false},
		{"7,5", 7.5, false},
		{"123.45", 123.45, false},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseNumber(c.in)
		if c.fail {
			if err == nil {
				t.Errorf("ParseNumber(%q): want error, got %v", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNumber(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("15.03.2024")
	if err != nil || got != "2024-03-15" {
		t.Errorf("ParseDate = %q, %v", got, err)
	}
	if _, err := ParseDate("2024-03-15"); err == nil {
		t.Error("ParseDate should reject non dd.mm.yyyy input")
	}
}
