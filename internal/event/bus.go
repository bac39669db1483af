// Package event provides the synchronous publish/subscribe bus that connects
// state mutation to view reaction.
//
// Handlers subscribe either to one exact event name (Name) or to a family of
// names selected by a regular expression (Pattern). Emit runs every matching
// handler in registration order before returning. There is no queue and no
// background delivery.
package event

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Handler receives the payload of an emitted event. Payloads are shared between
// handlers, so a handler must not assume it sees an unmodified value.
type Handler func(payload any)

// Emitter is the publishing side of the bus.
type Emitter interface {
	Emit(name string, payload any)
}

// Subscription is the handle returned by Subscribe. It identifies exactly one
// registration, so the same handler registered twice yields two handles.
type Subscription struct {
	id      string
	matcher Matcher
	handler Handler
}

// ID returns the unique subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Matcher returns the matcher the subscription was registered with.
func (s *Subscription) Matcher() Matcher {
	return s.matcher
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger makes the bus log subscriptions and every emit at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger.With("component", "event_bus")
		}
	}
}

// Bus is the default Emitter implementation.
//
// The lock only guards the subscription list. Handlers run outside of it, so a
// handler may subscribe, unsubscribe or emit again without deadlocking.
type Bus struct {
	mu     sync.RWMutex
	subs   []*Subscription
	logger *slog.Logger
}

var _ Emitter = (*Bus)(nil)

// New creates an empty bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every event accepted by matcher.
// There is no uniqueness check: registering the same handler twice makes it run twice.
func (b *Bus) Subscribe(matcher Matcher, handler Handler) (*Subscription, error) {
	if matcher == nil {
		return nil, ErrNilMatcher
	}
	if p, ok := matcher.(Pattern); ok && p.re == nil {
		return nil, ErrNilMatcher
	}
	if handler == nil {
		return nil, ErrNilHandler
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		matcher: matcher,
		handler: handler,
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	b.logger.Debug("Subscribed", "subscription_id", sub.id, "matcher", matcher.String())
	return sub, nil
}

// On is Subscribe for a single exact event name.
func (b *Bus) On(name string, handler Handler) (*Subscription, error) {
	return b.Subscribe(Name(name), handler)
}

// Unsubscribe removes a registration. Unknown or nil handles are ignored.
// It reports whether anything was removed.
func (b *Bus) Unsubscribe(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s == sub {
			// copy into a fresh slice: an in-flight Emit may still range over the old one
			next := make([]*Subscription, 0, len(b.subs)-1)
			next = append(next, b.subs[:i]...)
			b.subs = append(next, b.subs[i+1:]...)
			b.logger.Debug("Unsubscribed", "subscription_id", sub.id, "matcher", sub.matcher.String())
			return true
		}
	}
	return false
}

// Emit synchronously invokes every handler whose matcher accepts name, in
// registration order. Handlers registered during this call are not invoked
// by it. A panic in a handler propagates to the caller of Emit.
func (b *Bus) Emit(name string, payload any) {
	b.mu.RLock()
	matched := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matcher.Match(name) {
			matched = append(matched, s)
		}
	}
	b.mu.RUnlock()

	b.logger.Debug("Event emitted", "event", name, "handlers", len(matched))

	for _, s := range matched {
		s.handler(payload)
	}
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
