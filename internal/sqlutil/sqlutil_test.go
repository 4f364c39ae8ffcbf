package sqlutil

import "testing"

func TestInClauseArgs(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   string
		nargs  int
	}{
		{"empty", nil, "NULL", 0},
		{"one", []string{"auth"}, "?", 1},
		{"three", []string{"a", "b", "c"}, "?, ?, ?", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, args := InClauseArgs(tt.values)
			if got != tt.want {
				t.Errorf("placeholders = %q, want %q", got, tt.want)
			}
			if len(args) != tt.nargs {
				t.Errorf("len(args) = %d, want %d", len(args), tt.nargs)
			}
		})
	}
}
