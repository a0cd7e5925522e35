package chat

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/saudedigital/saude/internal/notifications"
	"github.com/saudedigital/saude/internal/triage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session closed")
)

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderSystem Sender = "system"
)

// Message is one entry of a conversation. Messages are never modified
// after they are appended.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
	// Tier is set on system messages only.
	Tier    *triage.Tier    `json:"tier,omitempty"`
	Actions []triage.Action `json:"actions,omitempty"`
	// ReplyTo is the ID of the user message a system reply answers.
	ReplyTo string `json:"reply_to,omitempty"`
}

// EventType names session events.
type EventType string

const (
	EventMessage      EventType = "message"
	EventTyping       EventType = "typing"
	EventNotification EventType = "notification"
)

// Event is published to session subscribers whenever observable state changes.
type Event struct {
	Type         EventType                   `json:"type"`
	Message      *Message                    `json:"message,omitempty"`
	Pending      int                         `json:"pending"`
	Notification *notifications.Notification `json:"notification,omitempty"`
}

// Notifier receives the urgent alerts raised by critical and high replies.
// *notifications.Dispatcher satisfies it.
type Notifier interface {
	Dispatch(ctx context.Context, n notifications.Notification) error
}

// DelayFunc returns how long to hold back the reply to one submission.
type DelayFunc func() time.Duration

// RandomDelay returns delays uniformly distributed in [min, max).
func RandomDelay(min, max time.Duration) DelayFunc {
	if max <= min {
		return FixedDelay(min)
	}
	return func() time.Duration {
		return min + rand.N(max-min)
	}
}

// FixedDelay always returns d.
func FixedDelay(d time.Duration) DelayFunc {
	return func() time.Duration { return d }
}
