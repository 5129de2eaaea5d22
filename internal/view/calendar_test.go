package view_test

import (
	"testing"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
	"github.com/Lauda128109319/food-alert/internal/view"
)

func TestBuildCalendarGridShape(t *testing.T) {
	tests := []struct {
		name       string
		cursor     view.Cursor
		wantDays   int
		wantBlanks int
	}{
		// 2026-08-01 is a Saturday
		{"august_2026", view.Cursor{Year: 2026, Month: time.August}, 31, 6},
		// 2026-02-01 is a Sunday, non-leap february
		{"february_2026", view.Cursor{Year: 2026, Month: time.February}, 28, 0},
		// leap year
		{"february_2028", view.Cursor{Year: 2028, Month: time.February}, 29, 2},
		{"april_2026", view.Cursor{Year: 2026, Month: time.April}, 30, 3},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			grid := view.BuildCalendar(nil, tt.cursor)

			if len(grid.Days) != tt.wantDays {
				t.Fatalf("days = %d, want %d", len(grid.Days), tt.wantDays)
			}

			if grid.LeadingBlanks != tt.wantBlanks {
				t.Fatalf("leadingBlanks = %d, want %d", grid.LeadingBlanks, tt.wantBlanks)
			}

			if len(grid.Weekdays) != 7 || grid.Weekdays[0] != "日" || grid.Weekdays[6] != "土" {
				t.Fatalf("weekday header = %v", grid.Weekdays)
			}

			for i, cell := range grid.Days {
				if cell.Day != i+1 {
					t.Fatalf("cell %d has day %d", i, cell.Day)
				}
			}
		})
	}
}

func TestBuildCalendarPlacesItemsByDisplayExpiry(t *testing.T) {
	cursor := view.Cursor{Year: 2026, Month: time.August}

	display := time.Date(2026, time.August, 15, 9, 30, 0, 0, time.UTC)

	items := []food.Item{
		{
			ID:            "1",
			Name:          "牛乳",
			DisplayExpiry: display,
			AlertExpiry:   display.Add(-food.AlertLead),
		},
		{
			// alert expiry lands on the 12th but the cell is chosen by the
			// display date
			ID:            "2",
			Name:          "卵",
			DisplayExpiry: display,
			AlertExpiry:   display.Add(-food.AlertLead),
		},
		{
			ID:            "3",
			Name:          "来月の品",
			DisplayExpiry: time.Date(2026, time.September, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	grid := view.BuildCalendar(items, cursor)

	cell := grid.Days[14] // the 15th

	if cell.Date != "2026-08-15" {
		t.Fatalf("cell date = %s", cell.Date)
	}

	if len(cell.Items) != 2 {
		t.Fatalf("cell has %d items, want 2", len(cell.Items))
	}

	if grid.Days[11].Items != nil {
		t.Fatalf("items leaked onto the alert-expiry cell")
	}

	// the september item must not show up anywhere in august
	for _, day := range grid.Days {
		for _, it := range day.Items {
			if it.ID == "3" {
				t.Fatalf("item from another month was placed on %s", day.Date)
			}
		}
	}
}

func TestBuildCalendarTitle(t *testing.T) {
	grid := view.BuildCalendar(nil, view.Cursor{Year: 2026, Month: time.August})

	if grid.Title != "2026年 8月" {
		t.Fatalf("title = %q", grid.Title)
	}

	if grid.Year != 2026 || grid.Month != 8 {
		t.Fatalf("year/month = %d/%d", grid.Year, grid.Month)
	}
}
