package render

import (
	"fmt"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/widgets"
)

// RequiredMarker is appended to the label of required fields.
const RequiredMarker = "*"

// FieldProps is everything a widget needs to draw one field.
type FieldProps struct {
	Name        string
	Type        model.FieldType
	Widget      string
	Label       string
	Value       any
	Placeholder string
	Error       string
	Disabled    bool
	Required    bool
	// Help is server-provided HTML and is passed through untouched.
	Help    string
	Choices []model.Choice
}

// HasWidget reports whether the field resolved to a widget. Fields without
// one are skipped by renderers.
func (p FieldProps) HasWidget() bool {
	return p.Widget != ""
}

// ValueString renders the value for text-based controls. nil becomes "".
func (p FieldProps) ValueString() string {
	return ValueString(p.Value)
}

// Selected reports whether choice matches the current value.
func (p FieldProps) Selected(choice model.Choice) bool {
	return ValueString(choice.Value) == p.ValueString()
}

// BuildProps maps a field and the current form state onto widget props using
// the default widget registry.
func BuildProps(field model.FieldSpec, values model.Values, errs map[string]string) FieldProps {
	return BuildPropsWith(widgets.Default(), field, values, errs)
}

// BuildPropsWith is BuildProps with an explicit widget registry.
func BuildPropsWith(registry *widgets.Registry, field model.FieldSpec, values model.Values, errs map[string]string) FieldProps {
	required := field.IsRequired()
	label := field.DisplayLabel()
	if required {
		label += RequiredMarker
	}

	widget, _ := registry.Resolve(field)

	props := FieldProps{
		Name:        field.Name,
		Type:        field.Type,
		Widget:      widget,
		Label:       label,
		Value:       values[field.Name],
		Placeholder: field.Placeholder,
		Error:       errs[field.Name],
		Disabled:    field.Readonly,
		Required:    required,
		Help:        field.Help,
	}
	if widget == widgets.WidgetSelect {
		props.Choices = append([]model.Choice(nil), field.Choices...)
	}
	return props
}

// ValueString formats a field value for display in a text control.
func ValueString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprint(v)
	default:
		return fmt.Sprint(v)
	}
}
