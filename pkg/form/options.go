package form

import (
	"log/slog"

	"github.com/goliatone/go-pluginform/pkg/notify"
)

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier routes progress and failure messages to sink.
func WithNotifier(sink notify.Sink) Option {
	return func(c *Controller) {
		if sink != nil {
			c.notifier = sink
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers fn as a state observer at construction time.
func WithObserver(fn func(State)) Option {
	return func(c *Controller) {
		if fn != nil {
			c.observers = append(c.observers, observer{id: c.nextObserver(), fn: fn})
		}
	}
}
