package session

import "time"

// Commands are the explicit messages the interaction surface dispatches
// instead of mutating state from event callbacks. Confirmation (for consume,
// reschedule and clear-all) happens in the interaction layer before a command
// is built; a command is the post-confirmation intent.
type Command interface {
	isCommand()
}

type AddRequested struct {
	ID            string // client-generated opaque id
	Name          string
	Qty           float64
	DisplayExpiry time.Time
}

type EditRequested struct {
	ID            string
	Name          string
	Qty           float64
	DisplayExpiry time.Time
}

type ConsumeRequested struct {
	ID string
}

// RescheduleRequested carries the dragged item's id (the drag payload, never
// a DOM position) and the drop cell's bound date.
type RescheduleRequested struct {
	ID   string
	Date time.Time
}

type ClearAllRequested struct{}

// MonthChanged moves the calendar cursor. It re-renders from the already
// loaded list and never re-fetches.
type MonthChanged struct {
	Delta int
}

func (AddRequested) isCommand()        {}
func (EditRequested) isCommand()       {}
func (ConsumeRequested) isCommand()    {}
func (RescheduleRequested) isCommand() {}
func (ClearAllRequested) isCommand()   {}
func (MonthChanged) isCommand()        {}
