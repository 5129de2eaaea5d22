// Package view turns a user's food items into the derived views the client
// shows: the urgency-sorted list, the month-grid calendar and the name
// autocomplete set. Everything here is a pure function of the item list plus
// an explicit State, so the views can be tested against constructed lists
// without any storage or clock globals.
package view

import (
	"fmt"
	"sort"
	"time"

	"github.com/Lauda128109319/food-alert/internal/domain/food"
)

// State is the per-render input: the clock and the displayed month cursor.
type State struct {
	Now    time.Time
	Cursor Cursor
}

// Cursor is the "currently displayed month".
type Cursor struct {
	Year  int
	Month time.Month
}

func CursorFor(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Add moves the cursor by delta months, letting time.Date normalize the
// overflow (December+1 rolls the year).
func (c Cursor) Add(delta int) Cursor {
	t := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return Cursor{Year: t.Year(), Month: t.Month()}
}

func (c Cursor) Title() string {
	return fmt.Sprintf("%d年 %d月", c.Year, int(c.Month))
}

type Severity string

const (
	SeverityDanger Severity = "danger"
	SeverityWarn   Severity = "warn"
	SeverityOK     Severity = "ok"
)

type Urgency struct {
	DaysLeft int      `json:"daysLeft"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}

const day = 24 * time.Hour

// Classify buckets one item by how close its alert expiry is.
// daysLeft is ceil((alertExpiry - now) / 1 day), so an alert expiry later
// today still counts as 0 and an expiry 25h away counts as 2.
func Classify(it food.Item, now time.Time) Urgency {
	diff := it.AlertExpiry.Sub(now)
	daysLeft := int(diff / day)

	if diff > 0 && diff%day != 0 {
		daysLeft++
	}

	var label string

	switch {
	case daysLeft < -3:
		label = "期限切れ"
	case daysLeft < 0:
		label = "消費してください"
	case daysLeft == 0:
		label = "本日消費期限"
	default:
		label = fmt.Sprintf("あと%d日", daysLeft)
	}

	severity := SeverityOK

	switch {
	case daysLeft <= 0:
		severity = SeverityDanger
	case daysLeft <= 2:
		severity = SeverityWarn
	}

	return Urgency{DaysLeft: daysLeft, Label: label, Severity: severity}
}

type ListEntry struct {
	Item food.Item `json:"item"`
	Urgency
}

// BuildList orders items soonest-critical first. The sort must be stable:
// items sharing an alert expiry keep their relative insertion order across
// re-renders.
func BuildList(items []food.Item, now time.Time) []ListEntry {
	sorted := make([]food.Item, len(items))
	copy(sorted, items)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AlertExpiry.Before(sorted[j].AlertExpiry)
	})

	out := make([]ListEntry, 0, len(sorted))

	for _, it := range sorted {
		out = append(out, ListEntry{Item: it, Urgency: Classify(it, now)})
	}

	return out
}

// BuildSuggestions is the autocomplete set: distinct names, sorted.
func BuildSuggestions(items []food.Item) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))

	for _, it := range items {
		if _, ok := seen[it.Name]; ok {
			continue
		}

		seen[it.Name] = struct{}{}
		out = append(out, it.Name)
	}

	sort.Strings(out)
	return out
}

// Snapshot is one consistent render of all three derived views. It is always
// produced from a single item list in one pass, which is what keeps the list,
// calendar and autocomplete from ever being shown out of sync.
type Snapshot struct {
	List        []ListEntry `json:"list"`
	Calendar    MonthGrid   `json:"calendar"`
	Suggestions []string    `json:"suggestions"`
}

func Render(items []food.Item, st State) Snapshot {
	return Snapshot{
		List:        BuildList(items, st.Now),
		Calendar:    BuildCalendar(items, st.Cursor),
		Suggestions: BuildSuggestions(items),
	}
}
