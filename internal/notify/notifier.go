package notify

import "context"

// Tag is the fixed dedup tag: a redelivery under the same tag replaces the
// previous notification instead of stacking a new one.
const Tag = "expiry-notification"

type ExpiryAlertInput struct {
	Owner string
	Title string
	Body  string
	Tag   string
}

type Notifier interface {
	SendExpiryAlert(ctx context.Context, input ExpiryAlertInput) error
}
