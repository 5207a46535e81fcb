package notify

import (
	"sync"
	"time"
)

// Indicator is an active message held by Indicators.
type Indicator struct {
	Token   Token
	Message Message
	Created time.Time
}

// Expired reports whether the indicator outlived its duration at now.
func (i Indicator) Expired(now time.Time) bool {
	return i.Message.Duration > 0 && !now.Before(i.Created.Add(i.Message.Duration))
}

// IndicatorOption configures an Indicators store.
type IndicatorOption func(*Indicators)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) IndicatorOption {
	return func(s *Indicators) {
		if now != nil {
			s.now = now
		}
	}
}

// WithListener registers a callback invoked with the active indicators after
// every change.
func WithListener(fn func([]Indicator)) IndicatorOption {
	return func(s *Indicators) {
		s.listener = fn
	}
}

// Indicators is an in-memory indicator store. Messages with a duration expire
// lazily: they disappear from Active once their time is up.
type Indicators struct {
	mu       sync.Mutex
	items    []Indicator
	now      func() time.Time
	listener func([]Indicator)
}

var _ Sink = (*Indicators)(nil)

// NewIndicators constructs an empty store.
func NewIndicators(options ...IndicatorOption) *Indicators {
	s := &Indicators{now: time.Now}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Emit stores the message and returns its token.
func (s *Indicators) Emit(msg Message) Token {
	token := NextToken()
	s.mu.Lock()
	s.items = append(s.items, Indicator{Token: token, Message: msg, Created: s.now()})
	snapshot := s.activeLocked()
	s.mu.Unlock()
	s.notify(snapshot)
	return token
}

// Dismiss removes the indicator. Unknown tokens are ignored.
func (s *Indicators) Dismiss(token Token) {
	s.mu.Lock()
	removed := false
	for i, item := range s.items {
		if item.Token == token {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	snapshot := s.activeLocked()
	s.mu.Unlock()
	if removed {
		s.notify(snapshot)
	}
}

// Active returns the indicators that are neither dismissed nor expired, oldest
// first.
func (s *Indicators) Active() []Indicator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeLocked()
}

func (s *Indicators) activeLocked() []Indicator {
	now := s.now()
	kept := s.items[:0]
	for _, item := range s.items {
		if !item.Expired(now) {
			kept = append(kept, item)
		}
	}
	s.items = kept
	return append([]Indicator(nil), kept...)
}

func (s *Indicators) notify(active []Indicator) {
	if s.listener != nil {
		s.listener(active)
	}
}
