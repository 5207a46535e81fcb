package notify

import (
	"log/slog"

	"github.com/gen2brain/beeep"
)

// DesktopSink raises OS notifications for error and success messages. Loading
// and info messages are too short-lived to be worth a popup and are skipped.
// Desktop notifications cannot be withdrawn, so Dismiss does nothing.
type DesktopSink struct {
	title  string
	notify func(title, message string) error
	logger *slog.Logger
}

var _ Sink = (*DesktopSink)(nil)

// DesktopOption configures a DesktopSink.
type DesktopOption func(*DesktopSink)

// WithDesktopLogger routes delivery failures to logger.
func WithDesktopLogger(logger *slog.Logger) DesktopOption {
	return func(s *DesktopSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifyFunc replaces the beeep backend.
func WithNotifyFunc(fn func(title, message string) error) DesktopOption {
	return func(s *DesktopSink) {
		if fn != nil {
			s.notify = fn
		}
	}
}

// NewDesktopSink builds a sink whose popups carry title.
func NewDesktopSink(title string, options ...DesktopOption) *DesktopSink {
	s := &DesktopSink{
		title: title,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		logger: slog.Default().With("component", "notify.desktop"),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *DesktopSink) Emit(msg Message) Token {
	token := NextToken()
	if msg.Kind != KindError && msg.Kind != KindSuccess {
		return token
	}
	if err := s.notify(s.title, msg.Text); err != nil {
		s.logger.Debug("desktop notification failed", "error", err)
	}
	return token
}

func (s *DesktopSink) Dismiss(Token) {}
