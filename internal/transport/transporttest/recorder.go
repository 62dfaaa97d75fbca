// Package transporttest provides a recording Notifier for tests.
package transporttest

import (
	"context"
	"strings"
	"sync"

	"github.com/amoradev/amora-backend/internal/transport"
)

// Message is one captured outbound message.
type Message struct {
	ChatID  int64
	Kind    string
	Text    string
	PhotoID string
	Buttons []transport.Button
}

// Recorder implements transport.Notifier and captures every send. Setting
// FailPhoto or FailAll simulates delivery failures.
type Recorder struct {
	mu       sync.Mutex
	Messages []Message

	FailPhoto error
	FailAll   error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SendText(_ context.Context, chatID int64, text string, buttons ...transport.Button) error {
	if r.FailAll != nil {
		return r.FailAll
	}
	r.record(Message{ChatID: chatID, Kind: "text", Text: text, Buttons: buttons})
	return nil
}

func (r *Recorder) SendPhoto(_ context.Context, chatID int64, photoID, caption string, buttons ...transport.Button) error {
	if r.FailAll != nil {
		return r.FailAll
	}
	if r.FailPhoto != nil {
		return r.FailPhoto
	}
	r.record(Message{ChatID: chatID, Kind: "photo", Text: caption, PhotoID: photoID, Buttons: buttons})
	return nil
}

func (r *Recorder) RequestLocation(_ context.Context, chatID int64, text string, buttons ...transport.Button) error {
	if r.FailAll != nil {
		return r.FailAll
	}
	r.record(Message{ChatID: chatID, Kind: "request_location", Text: text, Buttons: buttons})
	return nil
}

func (r *Recorder) RequestContact(_ context.Context, chatID int64, text string, buttons ...transport.Button) error {
	if r.FailAll != nil {
		return r.FailAll
	}
	r.record(Message{ChatID: chatID, Kind: "request_contact", Text: text, Buttons: buttons})
	return nil
}

func (r *Recorder) record(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, m)
}

// Last returns the most recent message, or a zero Message if none were sent.
func (r *Recorder) Last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Messages) == 0 {
		return Message{}
	}
	return r.Messages[len(r.Messages)-1]
}

// For returns all messages delivered to one chat.
func (r *Recorder) For(chatID int64) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.Messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Contains reports whether any captured text or caption contains substr.
func (r *Recorder) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.Messages {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}
	return false
}

var _ transport.Notifier = (*Recorder)(nil)
