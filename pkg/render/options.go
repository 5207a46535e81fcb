package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry host-supplied data that is not part of the form state.
type RenderOptions struct {
	// Action is the URL the rendered form posts to. Empty keeps the current
	// page.
	Action string
	// Method is the HTTP verb the submission should reach the server with.
	// HTML forms only speak GET and POST, so renderers emit POST plus a
	// hidden override field for anything else.
	Method string
	// Hidden adds extra hidden inputs (CSRF tokens and the like).
	Hidden []HiddenField
	// SubmitLabel overrides the submit button caption.
	SubmitLabel string
	// Theme is a resolved go-theme selection. Nil renders unthemed markup.
	Theme *theme.RendererConfig
}

// DefaultSubmitLabel is the caption used when RenderOptions.SubmitLabel is
// empty.
const DefaultSubmitLabel = "Save Changes"

// SubmitText returns the effective submit caption.
func (o RenderOptions) SubmitText() string {
	if o.SubmitLabel != "" {
		return o.SubmitLabel
	}
	return DefaultSubmitLabel
}
