package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType enumerates the input kinds the server can describe. Unknown values
// survive decoding so renderers can decide to skip them.
type FieldType string

const (
	FieldTypeSecret   FieldType = "secret"
	FieldTypeText     FieldType = "text"
	FieldTypeURL      FieldType = "url"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
)

// Known reports whether the type is one of the built-in field kinds.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeSecret, FieldTypeText, FieldTypeURL, FieldTypeTextarea, FieldTypeSelect:
		return true
	default:
		return false
	}
}

// Choice is a single (value, label) option of a select field. On the wire it
// is a two element array: ["value", "Label"].
type Choice struct {
	Value any
	Label string
}

// MarshalJSON encodes the choice as a [value, label] pair.
func (c Choice) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{c.Value, c.Label})
}

// UnmarshalJSON accepts [value, label] pairs, single element arrays and bare
// scalars. When the label is missing the value doubles as the label.
func (c *Choice) UnmarshalJSON(data []byte) error {
	var pair []any
	if err := json.Unmarshal(data, &pair); err != nil {
		var scalar any
		if err := json.Unmarshal(data, &scalar); err != nil {
			return fmt.Errorf("model: decode choice: %w", err)
		}
		c.Value = scalar
		c.Label = fmt.Sprint(scalar)
		return nil
	}
	switch len(pair) {
	case 0:
		return fmt.Errorf("model: decode choice: empty pair")
	case 1:
		c.Value = pair[0]
		c.Label = fmt.Sprint(pair[0])
	default:
		c.Value = pair[0]
		c.Label = fmt.Sprint(pair[1])
	}
	return nil
}

// FieldSpec describes one server-defined input.
type FieldSpec struct {
	Name            string    `json:"name"`
	Label           string    `json:"label,omitempty"`
	Type            FieldType `json:"type"`
	Required        *bool     `json:"required,omitempty"`
	Placeholder     string    `json:"placeholder,omitempty"`
	Help            string    `json:"help,omitempty"`
	Readonly        bool      `json:"readonly,omitempty"`
	Choices         []Choice  `json:"choices,omitempty"`
	HasAutocomplete bool      `json:"has_autocomplete,omitempty"`
}

// IsRequired resolves the optional required flag. Fields that do not declare
// it are required.
func (f FieldSpec) IsRequired() bool {
	if f.Required == nil {
		return true
	}
	return *f.Required
}

// DisplayLabel returns the label, falling back to the field name.
func (f FieldSpec) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return f.Name
}

// ConfigField is a FieldSpec as returned by the plugin endpoint, carrying the
// stored value and the declared default.
type ConfigField struct {
	FieldSpec
	Value        any `json:"value,omitempty"`
	DefaultValue any `json:"defaultValue,omitempty"`
}

// Bool returns a pointer to b, handy for FieldSpec.Required literals.
func Bool(b bool) *bool {
	return &b
}

// Specs strips values from a config payload, preserving order.
func Specs(fields []ConfigField) []FieldSpec {
	if fields == nil {
		return nil
	}
	out := make([]FieldSpec, len(fields))
	for i, field := range fields {
		out[i] = field.FieldSpec
		if len(field.Choices) > 0 {
			out[i].Choices = append([]Choice(nil), field.Choices...)
		}
	}
	return out
}
