package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saudedigital/saude/internal/notifications"
	"github.com/saudedigital/saude/internal/triage"
)

const notifyTimeout = 15 * time.Second

// Option configures sessions.
type Option func(*settings)

type settings struct {
	delay    DelayFunc
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
	buffer   int
}

func buildSettings(opts []Option) settings {
	s := settings{
		delay:  RandomDelay(time.Second, 2*time.Second),
		logger: zap.NewNop(),
		now:    time.Now,
		buffer: 64,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDelay sets the artificial reply delay.
func WithDelay(d DelayFunc) Option { return func(s *settings) { s.delay = d } }

// WithNotifier sets where urgent alerts are dispatched.
func WithNotifier(n Notifier) Option { return func(s *settings) { s.notifier = n } }

// WithLogger sets the session logger.
func WithLogger(l *zap.Logger) Option { return func(s *settings) { s.logger = l } }

// WithClock overrides the time source used for message timestamps.
func WithClock(now func() time.Time) Option { return func(s *settings) { s.now = now } }

// WithEventBuffer sets the per-subscriber event buffer size.
func WithEventBuffer(n int) Option { return func(s *settings) { s.buffer = n } }

type job struct {
	msg Message
	due time.Time
}

// Session owns one conversation and produces its replies.
//
// Each submission is stamped with its own due time (submission time plus
// the configured delay). A single worker answers submissions strictly in
// the order they were made, never before their due time, so replies keep
// the order of the messages they answer.
type Session struct {
	id     string
	engine *triage.Engine
	cfg    settings
	conv   Conversation
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wake   chan struct{}
	done   chan struct{}
	alerts sync.WaitGroup

	mu       sync.Mutex
	queue    []job
	closed   bool
	lastSeen time.Time
	subs     map[int]chan Event
	nextSub  int
}

// NewSession starts a session, seeded with the engine's greeting.
func NewSession(engine *triage.Engine, opts ...Option) *Session {
	cfg := buildSettings(opts)
	ctx, cancel := context.WithCancel(context.Background())

	s := &Session{
		id:       uuid.New().String(),
		engine:   engine,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		lastSeen: cfg.now(),
		subs:     make(map[int]chan Event),
	}
	s.logger = cfg.logger.With(zap.String("session_id", s.id))

	if greeting := engine.Greeting(); greeting != "" {
		low := triage.TierLow
		s.conv.append(Message{
			ID:        uuid.New().String(),
			Text:      greeting,
			Sender:    SenderSystem,
			Timestamp: s.lastSeen,
			Tier:      &low,
		})
	}

	go s.run()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Messages returns a snapshot of the conversation.
func (s *Session) Messages() []Message { return s.conv.Messages() }

// Len is the current conversation length.
func (s *Session) Len() int { return s.conv.Len() }

// Pending is the number of submissions still waiting for a reply.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// LastActive is the time of the last submission or Touch.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Touch marks the session as in use without submitting anything.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.cfg.now()
	s.mu.Unlock()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Submit appends a user message and schedules its reply. Blank text is
// ignored: ok is false and the conversation is unchanged. Submit never
// waits for the reply.
func (s *Session) Submit(text string) (msg Message, ok bool, err error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Message{}, false, ErrSessionClosed
	}

	now := s.cfg.now()
	msg = Message{
		ID:        uuid.New().String(),
		Text:      text,
		Sender:    SenderUser,
		Timestamp: now,
	}
	s.conv.append(msg)
	s.queue = append(s.queue, job{msg: msg, due: now.Add(s.cfg.delay())})
	s.lastSeen = now

	s.publishLocked(Event{Type: EventMessage, Message: &msg, Pending: len(s.queue)})
	s.publishLocked(Event{Type: EventTyping, Pending: len(s.queue)})

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return msg, true, nil
}

// Subscribe returns a channel of session events and a func to stop
// receiving them. The channel is closed when the session closes. Events
// are dropped for subscribers that fall behind.
func (s *Session) Subscribe() (<-chan Event, func()) {
	_, ch, unsubscribe := s.SubscribeWithSnapshot()
	return ch, unsubscribe
}

// SubscribeWithSnapshot is Subscribe that also returns the conversation as
// it stood when the subscription started. Every message is either in the
// snapshot or delivered as an event, never both.
func (s *Session) SubscribeWithSnapshot() ([]Message, <-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Appends happen under s.mu, so the snapshot cannot miss or repeat
	// a message published to the new channel.
	snapshot := s.conv.Messages()
	ch := make(chan Event, s.cfg.buffer)
	if s.closed {
		close(ch)
		return snapshot, ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	return snapshot, ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Subscribers is the number of live subscriptions.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Close cancels pending replies and releases subscribers. Nothing is
// appended after Close returns.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	dropped := len(s.queue)
	s.queue = nil
	s.cancel()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	<-s.done
	s.alerts.Wait()
	s.logger.Debug("session closed", zap.Int("dropped_replies", dropped), zap.Int("messages", s.conv.Len()))
}

func (s *Session) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.wake:
				continue
			case <-s.ctx.Done():
				return
			}
		}
		next := s.queue[0]
		s.mu.Unlock()

		if wait := next.due.Sub(s.cfg.now()); wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-s.ctx.Done():
				timer.Stop()
				return
			}
		}

		if !s.reply(next.msg) {
			return
		}
	}
}

// reply answers the head of the queue. It returns false once the session
// is closed.
func (s *Session) reply(user Message) bool {
	result := s.engine.Evaluate(user.Text)
	tier := result.Response.Tier

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	msg := Message{
		ID:        uuid.New().String(),
		Text:      result.Response.Message,
		Sender:    SenderSystem,
		Timestamp: s.cfg.now(),
		Tier:      &tier,
		Actions:   result.Response.Actions,
		ReplyTo:   user.ID,
	}
	s.conv.append(msg)
	s.queue = s.queue[1:]
	s.publishLocked(Event{Type: EventMessage, Message: &msg, Pending: len(s.queue)})
	s.publishLocked(Event{Type: EventTyping, Pending: len(s.queue)})

	var alert *notifications.Notification
	if tier.Urgent() {
		title := result.Response.Alert
		if title == "" {
			title = result.Response.Message
		}
		alert = &notifications.Notification{
			ID:        uuid.New().String(),
			Severity:  notifications.SeverityError,
			Title:     title,
			Message:   user.Text,
			Source:    notifications.SourceTriage,
			SessionID: s.id,
			Tier:      tier.String(),
			CreatedAt: msg.Timestamp.UTC(),
		}
		s.publishLocked(Event{Type: EventNotification, Notification: alert, Pending: len(s.queue)})
	}
	s.mu.Unlock()

	s.logger.Info("triage reply",
		zap.String("tier", tier.String()),
		zap.String("trigger", result.Match.Trigger),
		zap.String("reply_to", user.ID),
	)

	if alert != nil && s.cfg.notifier != nil {
		s.alerts.Add(1)
		go s.notify(*alert)
	}
	return true
}

// notify hands an alert to the notifier. Failures never affect the
// conversation; they are only logged.
func (s *Session) notify(n notifications.Notification) {
	defer s.alerts.Done()

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	if err := s.cfg.notifier.Dispatch(ctx, n); err != nil {
		s.logger.Warn("urgent notification not delivered",
			zap.String("notification_id", n.ID),
			zap.String("tier", n.Tier),
			zap.Error(err),
		)
	}
}

func (s *Session) publishLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("dropping event for slow subscriber", zap.String("event", string(ev.Type)))
		}
	}
}
