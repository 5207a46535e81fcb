package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Built-in widget identifiers.
const (
	WidgetPassword           = "password"
	WidgetText               = "text"
	WidgetTextarea           = "textarea"
	WidgetSelect             = "select"
	WidgetSelectAutocomplete = "select-autocomplete"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.FieldSpec) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects the widget for a field from registered matchers. Higher
// priority wins; ties fall back to registration order. A field no matcher
// accepts has no widget, which renderers treat as "skip this field".
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns a shared registry holding only the built-in matchers.
// Callers that register their own widgets should build a separate one with
// NewRegistry.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher under name. Empty names and nil matchers are
// ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for field.
func (r *Registry) Resolve(field model.FieldSpec) (string, bool) {
	if r == nil {
		return "", false
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

// Names lists the distinct registered widget names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{}, len(r.rules))
	names := make([]string, 0, len(r.rules))
	for _, entry := range r.rules {
		if _, ok := seen[entry.name]; ok {
			continue
		}
		seen[entry.name] = struct{}{}
		names = append(names, entry.name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSelectAutocomplete, 60, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeSelect && field.HasAutocomplete
	})
	r.Register(WidgetSelect, 50, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeSelect
	})
	r.Register(WidgetPassword, 40, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeSecret
	})
	r.Register(WidgetTextarea, 30, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeTextarea
	})
	r.Register(WidgetText, 20, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeText || field.Type == model.FieldTypeURL
	})
}
