package notify

import (
	"context"
	"log/slog"
)

// LogSink writes notifications to a structured logger. Error messages are
// logged at warn level, everything else at info.
type LogSink struct {
	logger *slog.Logger
}

var _ Sink = (*LogSink)(nil)

// NewLogSink wraps logger; nil falls back to slog.Default.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default().With("component", "notify")
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(msg Message) Token {
	token := NextToken()
	level := slog.LevelInfo
	if msg.Kind == KindError {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, msg.Text, "token", uint64(token), "kind", string(msg.Kind))
	return token
}

func (s *LogSink) Dismiss(token Token) {
	s.logger.Debug("notification dismissed", "token", uint64(token))
}
