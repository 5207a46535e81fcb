package tui

import (
	"io"
	"os"
)

// Theme captures optional prefixes the editor applies to printed lines.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// Option configures an Editor.
type Option func(*Editor)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(e *Editor) {
		if driver != nil {
			e.driver = driver
		}
	}
}

// WithOutput sets where the default survey driver prints info lines.
func WithOutput(w io.Writer) Option {
	return func(e *Editor) {
		if w != nil {
			e.out = w
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(e *Editor) {
		e.theme = theme
	}
}

func defaultOutput() io.Writer {
	return os.Stdout
}
