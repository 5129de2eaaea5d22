package view

import (
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
)

// weekday header, Sunday first
var weekdayLabels = []string{"日", "月", "火", "水", "木", "金", "土"}

type DayCell struct {
	Day   int         `json:"day"`
	Date  string      `json:"date"` // YYYY-MM-DD, the drop target's bound date
	Items []food.Item `json:"items"`
}

type MonthGrid struct {
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	Title         string    `json:"title"`
	Weekdays      []string  `json:"weekdays"`
	LeadingBlanks int       `json:"leadingBlanks"`
	Days          []DayCell `json:"days"`
}

const dateLayout = "2006-01-02"

// BuildCalendar lays out the cursor's month as a 7-column grid: the weekday
// header row, leading blanks up to the weekday of day 1, then one cell per
// calendar day carrying the items whose display expiry falls on that date.
// Grouping is by the display expiry, not the alert expiry.
func BuildCalendar(items []food.Item, c Cursor) MonthGrid {
	first := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)

	// day 0 of the next month is the last day of this one
	daysInMonth := time.Date(c.Year, c.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	byDate := make(map[string][]food.Item)

	for _, it := range items {
		key := it.DisplayExpiry.UTC().Format(dateLayout)
		byDate[key] = append(byDate[key], it)
	}

	days := make([]DayCell, 0, daysInMonth)

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(c.Year, c.Month, d, 0, 0, 0, 0, time.UTC).Format(dateLayout)

		days = append(days, DayCell{
			Day:   d,
			Date:  date,
			Items: byDate[date],
		})
	}

	return MonthGrid{
		Year:          c.Year,
		Month:         int(c.Month),
		Title:         c.Title(),
		Weekdays:      weekdayLabels,
		LeadingBlanks: int(first.Weekday()),
		Days:          days,
	}
}
