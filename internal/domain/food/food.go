package food

import (
	"encoding/json"
	"errors"
	"time"
)

// AlertLead is how far ahead of the display expiry the alert expiry sits.
// An item's "expiry" on the wire is the alert date, three days before the
// date shown on the calendar ("originalExpiry").
const AlertLead = 3 * 24 * time.Hour

var ErrNotFound = errors.New("food item not found")

// Item is one tracked food item. Ids are opaque strings generated by the
// caller on add (the original client uses timestamp+random).
type Item struct {
	ID            string    `json:"id"`
	Owner         string    `json:"-"`
	Name          string    `json:"name"`
	Qty           float64   `json:"qty"`
	AlertExpiry   time.Time `json:"-"`
	DisplayExpiry time.Time `json:"-"`
}

// The wire format keeps the original field names and epoch-millisecond
// encoding: "expiry" is the alert expiry, "originalExpiry" the display one.

type wireItem struct {
	ID             string  `json:"id"`
	Username       string  `json:"username"`
	Name           string  `json:"name"`
	Qty            float64 `json:"qty"`
	Expiry         int64   `json:"expiry"`
	OriginalExpiry int64   `json:"originalExpiry"`
}

func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireItem{
		ID:             i.ID,
		Username:       i.Owner,
		Name:           i.Name,
		Qty:            i.Qty,
		Expiry:         i.AlertExpiry.UnixMilli(),
		OriginalExpiry: i.DisplayExpiry.UnixMilli(),
	})
}

func (i *Item) UnmarshalJSON(b []byte) error {
	var w wireItem
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	i.ID = w.ID
	i.Owner = w.Username
	i.Name = w.Name
	i.Qty = w.Qty
	i.AlertExpiry = time.UnixMilli(w.Expiry).UTC()
	i.DisplayExpiry = time.UnixMilli(w.OriginalExpiry).UTC()
	return nil
}

type CreateItemRequest struct {
	ID             string  `json:"id" binding:"required"`
	Username       string  `json:"username" binding:"required"`
	Name           string  `json:"name" binding:"required,max=120"`
	Qty            float64 `json:"qty" binding:"required,gt=0"`
	Expiry         int64   `json:"expiry" binding:"omitempty"`
	OriginalExpiry int64   `json:"originalExpiry" binding:"required"`
}

// a full update payload; unchanged fields must be resent (no patch semantics)
type UpdateItemRequest struct {
	Name           string  `json:"name" binding:"required,max=120"`
	Qty            float64 `json:"qty" binding:"required,gt=0"`
	Expiry         int64   `json:"expiry" binding:"omitempty"`
	OriginalExpiry int64   `json:"originalExpiry" binding:"required"`
}

// NewFromCreateRequest builds an Item from the create payload. The alert
// expiry is always derived from the display expiry, whatever the client sent,
// so alertExpiry = displayExpiry - 3 days holds on every mutation path.
func NewFromCreateRequest(req CreateItemRequest) Item {
	display := time.UnixMilli(req.OriginalExpiry).UTC()

	return Item{
		ID:            req.ID,
		Owner:         req.Username,
		Name:          req.Name,
		Qty:           req.Qty,
		AlertExpiry:   display.Add(-AlertLead),
		DisplayExpiry: display,
	}
}

// ApplyUpdate returns a copy of the item with the update payload applied,
// alert expiry re-derived.
func (i Item) ApplyUpdate(req UpdateItemRequest) Item {
	display := time.UnixMilli(req.OriginalExpiry).UTC()

	i.Name = req.Name
	i.Qty = req.Qty
	i.DisplayExpiry = display
	i.AlertExpiry = display.Add(-AlertLead)
	return i
}

// Rescheduled moves the item's display expiry to the target date, keeping
// name and quantity untouched.
func (i Item) Rescheduled(target time.Time) Item {
	i.DisplayExpiry = target
	i.AlertExpiry = target.Add(-AlertLead)
	return i
}
