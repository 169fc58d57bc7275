package util

import "testing"

func TestSafeFileName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Trip", "My_Trip"},
		{"My   Trip  2024", "My_Trip_2024"},
		{"  padded  ", "padded"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
		{"", DefaultReelName},
		{"   ", DefaultReelName},
		{"already_safe", "already_safe"},
	}

	for _, c := range cases {
		if got := SafeFileName(c.in); got != c.want {
			t.Errorf("SafeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
