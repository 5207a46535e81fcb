package vanilla

// ChromeClass is a semantic CSS class applied to form chrome.
type ChromeClass string

const (
	ClassForm    ChromeClass = "pluginform-form"
	ClassField   ChromeClass = "pluginform-field"
	ClassInvalid ChromeClass = "pluginform-field--invalid"
	ClassHelp    ChromeClass = "pluginform-help"
	ClassError   ChromeClass = "pluginform-error"
	ClassErrors  ChromeClass = "pluginform-errors"
	ClassActions ChromeClass = "pluginform-actions"
)

// Classes overrides chrome classes. Empty entries keep the default.
type Classes struct {
	Form    string
	Field   string
	Invalid string
	Help    string
	Error   string
	Errors  string
	Actions string
}

func (c Classes) context() map[string]any {
	pick := func(value string, fallback ChromeClass) string {
		if value = sanitizeClassList(value); value != "" {
			return value
		}
		return string(fallback)
	}
	return map[string]any{
		"form":    pick(c.Form, ClassForm),
		"field":   pick(c.Field, ClassField),
		"invalid": pick(c.Invalid, ClassInvalid),
		"help":    pick(c.Help, ClassHelp),
		"error":   pick(c.Error, ClassError),
		"errors":  pick(c.Errors, ClassErrors),
		"actions": pick(c.Actions, ClassActions),
	}
}
