package render

import (
	"context"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Renderer turns a form view into bytes (HTML, plain text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view View, options RenderOptions) ([]byte, error)
}

// View is the render-time snapshot of a form: the schema in server order plus
// the current values and error state. Renderers must treat it as read-only.
type View struct {
	Fields         []model.FieldSpec
	Values         model.Values
	Errors         map[string]string
	FormErrors     []string
	SubmitDisabled bool
	Saving         bool
}

// Props builds the widget properties of every field, in order.
func (v View) Props() []FieldProps {
	out := make([]FieldProps, 0, len(v.Fields))
	for _, field := range v.Fields {
		out = append(out, BuildProps(field, v.Values, v.Errors))
	}
	return out
}
