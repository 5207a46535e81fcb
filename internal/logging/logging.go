// Package logging owns the CLI's slog setup.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-pluginform/internal/config"
)

// Manager owns the logger configuration and the optional log file.
type Manager struct {
	mu     sync.RWMutex
	out    io.Writer
	logger *slog.Logger
	file   *os.File
}

// NewManager logs at info level to out, stderr when nil. Stdout is left to
// command output.
func NewManager(out io.Writer) *Manager {
	if out == nil {
		out = os.Stderr
	}
	m := &Manager{out: out}
	m.logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelInfo}))
	return m
}

// Configure applies cfg and installs the result as the slog default. verbose
// forces debug level.
func (m *Manager) Configure(cfg config.LoggingConfig, verbose bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.file != nil {
		_ = m.file.Close()
		m.file = nil
	}

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}

	writer := m.out
	if path := strings.TrimSpace(cfg.File); path != "" {
		file, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("logging: open log file: %w", err)
		}
		m.file = file
		writer = io.MultiWriter(m.out, file)
	}

	m.logger = slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(m.logger)
	return nil
}

// Logger returns a logger tagged with component.
func (m *Manager) Logger(component string) *slog.Logger {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.logger.With("component", component)
}

// File returns the path of the open log file, empty when logging only to the
// console.
func (m *Manager) File() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.file == nil {
		return ""
	}
	return m.file.Name()
}

// Close releases the log file, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.file != nil {
		if err := m.file.Close(); err != nil {
			return err
		}
		m.file = nil
	}
	return nil
}

// ParseLevel maps a config level name onto a slog level.
func ParseLevel(raw string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("logging: unsupported log level %q", raw)
	}
}
