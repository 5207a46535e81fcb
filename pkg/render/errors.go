package render

import (
	"sort"
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// ErrorMapping splits a server error payload into messages bound to a known
// field and form-level messages.
type ErrorMapping struct {
	Fields map[string]string
	Form   []string
}

// MapErrorPayload normalises a `{field: [messages]}` payload against the form
// fields. Each field gets a single message (multiple messages are joined with
// a space). A key naming a schema field is always bound to that field, even
// when it reads like a form-level key (`detail`, `form`). Form-level keys such
// as `__all__` and names that match no field end up in Form so nothing
// reported by the server is lost. Fields is never nil.
func MapErrorPayload(fields []model.FieldSpec, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string]string)}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			known[name] = struct{}{}
		}
	}

	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, rawKey := range keys {
		messages := normalizeMessages(payload[rawKey])
		if len(messages) == 0 {
			continue
		}
		key := strings.TrimSpace(rawKey)
		if _, ok := known[key]; ok {
			mapping.Fields[key] = strings.Join(messages, " ")
			continue
		}
		mapping.Form = append(mapping.Form, messages...)
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}

	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
