package rental

import (
	"testing"
	"time"
)

func TestDueDate(t *testing.T) {
	tests := []struct {
		name    string
		ordered time.Time
		want    time.Time
	}{
		{
			name:    "mid month",
			ordered: time.Date(2024, time.March, 1, 10, 30, 0, 0, time.UTC),
			want:    time.Date(2024, time.March, 21, 10, 30, 0, 0, time.UTC),
		},
		{
			name:    "rolls into next month from a 31-day month",
			ordered: time.Date(2024, time.July, 20, 0, 0, 0, 0, time.UTC),
			want:    time.Date(2024, time.August, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "rolls over a February in a leap year",
			ordered: time.Date(2024, time.February, 15, 12, 0, 0, 0, time.UTC),
			want:    time.Date(2024, time.March, 6, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "rolls over the year boundary",
			ordered: time.Date(2023, time.December, 25, 23, 59, 0, 0, time.UTC),
			want:    time.Date(2024, time.January, 14, 23, 59, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDate(tt.ordered)
			if !got.Equal(tt.want) {
				t.Errorf("DueDate(%v) = %v, want %v", tt.ordered, got, tt.want)
			}
		})
	}
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		prefix string
		n      int
		want   string
	}{
		{orderIDPrefix, 1, "gamerentalorder1"},
		{orderIDPrefix, 1042, "gamerentalorder1042"},
		{trackingIDPrefix, 7, "trackingid7"},
	}

	for _, tt := range tests {
		if got := formatID(tt.prefix, tt.n); got != tt.want {
			t.Errorf("formatID(%q, %d) = %q, want %q", tt.prefix, tt.n, got, tt.want)
		}
	}
}

func TestSuffixOf(t *testing.T) {
	tests := []struct {
		id   string
		want int
	}{
		{"gamerentalorder1", 1},
		{"gamerentalorder999", 999},
		{"trackingid42", 42},
		{"nodigits", 0},
		{"", 0},
		{"7mixed3", 3},
	}

	for _, tt := range tests {
		if got := suffixOf(tt.id); got != tt.want {
			t.Errorf("suffixOf(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}

func TestMergeItems(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  []OrderItem
	}{
		{
			name:  "no duplicates",
			items: []OrderItem{{"game1", 2}, {"game2", 1}},
			want:  []OrderItem{{"game1", 2}, {"game2", 1}},
		},
		{
			name:  "duplicate ids sum their quantities",
			items: []OrderItem{{"game1", 2}, {"game2", 1}, {"game1", 3}},
			want:  []OrderItem{{"game1", 5}, {"game2", 1}},
		},
		{
			name:  "single item",
			items: []OrderItem{{"game9", 1}},
			want:  []OrderItem{{"game9", 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeItems(tt.items)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d items, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
