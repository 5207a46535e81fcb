package render

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// MethodOverrideField is the hidden input carrying the real HTTP verb when a
// form has to be posted.
const MethodOverrideField = "_method"

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken constructs the hidden field carrying a CSRF token under name.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// FormMethod maps an HTTP verb onto what an HTML form can send. The second
// return value is the override field to add, if any.
func FormMethod(method string) (string, *HiddenField) {
	verb := strings.ToUpper(strings.TrimSpace(method))
	switch verb {
	case "", http.MethodPost:
		return http.MethodPost, nil
	case http.MethodGet:
		return http.MethodGet, nil
	default:
		override := Hidden(MethodOverrideField, verb)
		return http.MethodPost, &override
	}
}

// SortedHiddenFields drops unnamed fields, lets later duplicates win and sorts
// the result by name for deterministic output.
func SortedHiddenFields(fields ...HiddenField) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		byName[name] = field.Value
	}
	if len(byName) == 0 {
		return nil
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HiddenField, 0, len(names))
	for _, name := range names {
		out = append(out, HiddenField{Name: name, Value: byName[name]})
	}
	return out
}
