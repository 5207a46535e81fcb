// Package notify carries transient, fire-and-forget status messages from the
// form controller to whatever indicator surface the host provides. Emit hands
// back a Token; Dismiss removes the message it identifies. Sinks never report
// delivery failures to the caller.
package notify

import (
	"sync"
	"sync/atomic"
	"time"
)

// Kind classifies a message for presentation.
type Kind string

const (
	KindLoading Kind = "loading"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Message is a single transient notification. A zero Duration keeps the
// message until it is dismissed.
type Message struct {
	Text     string
	Kind     Kind
	Duration time.Duration
}

// Token identifies an emitted message. The zero Token is never issued.
type Token uint64

// Sink receives notifications.
type Sink interface {
	Emit(msg Message) Token
	Dismiss(token Token)
}

var tokenSeq atomic.Uint64

// NextToken returns a process-unique token for Sink implementations.
func NextToken() Token {
	return Token(tokenSeq.Add(1))
}

// Discard drops every message.
var Discard Sink = discard{}

type discard struct{}

func (discard) Emit(Message) Token { return NextToken() }
func (discard) Dismiss(Token)      {}

// Multi fans every message out to all sinks. The returned token dismisses the
// message on each of them.
func Multi(sinks ...Sink) Sink {
	filtered := make([]Sink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			filtered = append(filtered, sink)
		}
	}
	return &multiSink{sinks: filtered, issued: make(map[Token][]Token)}
}

type multiSink struct {
	sinks []Sink

	mu     sync.Mutex
	issued map[Token][]Token
}

func (m *multiSink) Emit(msg Message) Token {
	children := make([]Token, len(m.sinks))
	for i, sink := range m.sinks {
		children[i] = sink.Emit(msg)
	}
	token := NextToken()
	m.mu.Lock()
	m.issued[token] = children
	m.mu.Unlock()
	return token
}

func (m *multiSink) Dismiss(token Token) {
	m.mu.Lock()
	children, ok := m.issued[token]
	delete(m.issued, token)
	m.mu.Unlock()
	if !ok {
		return
	}
	for i, sink := range m.sinks {
		sink.Dismiss(children[i])
	}
}
