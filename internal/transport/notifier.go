package transport

import "context"

// Button is an action button attached to an outbound message. Data is the
// callback payload echoed back when the user presses it.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data,omitempty"`
}

// Notifier is the outbound side of the chat transport. Delivery is
// best-effort: a send may fail, and callers must never let a failed
// notification unwind a completed state transition.
type Notifier interface {
	SendText(ctx context.Context, chatID int64, text string, buttons ...Button) error
	SendPhoto(ctx context.Context, chatID int64, photoID, caption string, buttons ...Button) error
	RequestLocation(ctx context.Context, chatID int64, text string, buttons ...Button) error
	RequestContact(ctx context.Context, chatID int64, text string, buttons ...Button) error
}
