package dates

import (
	"testing"
	"time"
)

func TestIsValidDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2026-01-05", true},
		{"2024-02-29", true},
		{"2025-02-29", false},
		{"2026-1-5", false},
		{"2026-13-01", false},
		{"", false},
		{"tomorrow", false},
	}

	for _, tt := range tests {
		if got := IsValidDate(tt.in); got != tt.want {
			t.Errorf("IsValidDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDateArg(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

	tests := []struct {
		name    string
		arg     string
		want    string
		wantErr bool
	}{
		{name: "empty defaults to today", arg: "", want: "2026-03-10"},
		{name: "today", arg: "Today", want: "2026-03-10"},
		{name: "yesterday", arg: "yesterday", want: "2026-03-09"},
		{name: "tomorrow", arg: "tomorrow", want: "2026-03-11"},
		{name: "absolute", arg: " 2025-12-31 ", want: "2025-12-31"},
		{name: "garbage", arg: "next week", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateArg(tt.arg, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDateArg(%q) = %q, want %q", tt.arg, got, tt.want)
			}
		})
	}
}

func TestTodayUsesClock(t *testing.T) {
	prev := Now
	t.Cleanup(func() { Now = prev })

	Now = func() time.Time { return time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC) }

	if got := Today(); got != "2026-10-19" {
		t.Errorf("Today() = %q, want %q", got, "2026-10-19")
	}
}
