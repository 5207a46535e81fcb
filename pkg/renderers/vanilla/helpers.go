package vanilla

import (
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/widgets"
)

func controlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "pf-" + trimmed
}

func sanitizeClassList(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// widgetTemplateName maps a widget onto its template. Password and text
// share the input template and differ only by input type.
func widgetTemplateName(widget string, fieldType model.FieldType) (name, inputType string) {
	switch widget {
	case widgets.WidgetPassword:
		return "input", "password"
	case widgets.WidgetText:
		if fieldType == model.FieldTypeURL {
			return "input", "url"
		}
		return "input", "text"
	default:
		return widget, ""
	}
}
