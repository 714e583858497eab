package common

import "testing"

func TestHasAny(t *testing.T) {
	tests := []struct {
		s    string
		subs []string
		want bool
	}{
		{"Patchy light Rain", []string{"rain", "drizzle"}, true},
		{"Thundery outbreaks", []string{"THUNDER"}, true},
		{"Sunny", []string{"cloud", "fog"}, false},
		{"anything", nil, false},
	}
	for _, tt := range tests {
		if got := HasAny(tt.s, tt.subs...); got != tt.want {
			t.Errorf("HasAny(%q, %v) = %v, want %v", tt.s, tt.subs, got, tt.want)
		}
	}
}
