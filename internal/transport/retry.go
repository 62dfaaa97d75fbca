package transport

import (
	"context"

	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/pkg/backoff"
)

// RetryingNotifier retries failed sends a bounded number of times with
// exponential backoff, then abandons the message with a log line. Retries
// run inside the calling event's goroutine, so one user's flaky delivery
// never serializes other users' event processing.
type RetryingNotifier struct {
	next   Notifier
	policy backoff.Policy
	log    *zap.Logger
}

func NewRetryingNotifier(next Notifier, policy backoff.Policy, log *zap.Logger) *RetryingNotifier {
	return &RetryingNotifier{next: next, policy: policy, log: log}
}

func (n *RetryingNotifier) SendText(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.attempt(ctx, chatID, "text", func() error {
		return n.next.SendText(ctx, chatID, text, buttons...)
	})
}

func (n *RetryingNotifier) SendPhoto(ctx context.Context, chatID int64, photoID, caption string, buttons ...Button) error {
	return n.attempt(ctx, chatID, "photo", func() error {
		return n.next.SendPhoto(ctx, chatID, photoID, caption, buttons...)
	})
}

func (n *RetryingNotifier) RequestLocation(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.attempt(ctx, chatID, "request_location", func() error {
		return n.next.RequestLocation(ctx, chatID, text, buttons...)
	})
}

func (n *RetryingNotifier) RequestContact(ctx context.Context, chatID int64, text string, buttons ...Button) error {
	return n.attempt(ctx, chatID, "request_contact", func() error {
		return n.next.RequestContact(ctx, chatID, text, buttons...)
	})
}

func (n *RetryingNotifier) attempt(ctx context.Context, chatID int64, kind string, send func() error) error {
	err := n.policy.Do(ctx, send)
	if err != nil {
		n.log.Error("abandoning outbound message",
			zap.Int64("chat_id", chatID),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	return err
}
