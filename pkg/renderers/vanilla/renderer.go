// Package vanilla renders a form view as plain HTML through the go-template engine.
// Labels, values and messages are escaped; field help is server-provided HTML
// and is emitted as is unless a sanitizer policy is configured.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-pluginform/pkg/render"
	rendertemplate "github.com/goliatone/go-pluginform/pkg/render/template"
	"github.com/goliatone/go-pluginform/pkg/render/template/gotemplate"
	"github.com/goliatone/go-pluginform/pkg/widgets"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	helpPolicy       *bluemonday.Policy
	classes          Classes
	widgets          *widgets.Registry
}

// WithTemplatesFS supplies an alternate template bundle.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithHelpSanitizer filters field help through policy before it is emitted.
func WithHelpSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		cfg.helpPolicy = policy
	}
}

// WithSanitizedHelp is WithHelpSanitizer using bluemonday's UGC policy.
func WithSanitizedHelp() Option {
	return WithHelpSanitizer(bluemonday.UGCPolicy())
}

// WithClasses overrides chrome CSS classes.
func WithClasses(classes Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithWidgets swaps the widget registry used to resolve field widgets.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	helpPolicy *bluemonday.Policy
	classes    map[string]any
	widgets    *widgets.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.Default()
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS), gotemplate.WithExtension(".tmpl"))
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Renderer{
		templates:  templates,
		helpPolicy: cfg.helpPolicy,
		classes:    cfg.classes.context(),
		widgets:    cfg.widgets,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws every field with a known widget, in schema order, followed by
// the submit button.
func (r *Renderer) Render(ctx context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	fields := make([]map[string]any, 0, len(view.Fields))
	for _, spec := range view.Fields {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		props := render.BuildPropsWith(r.widgets, spec, view.Values, view.Errors)
		if !props.HasWidget() {
			continue
		}
		field, err := r.renderField(props)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	method, override := render.FormMethod(options.Method)
	hidden := options.Hidden
	if override != nil {
		hidden = append(append([]render.HiddenField(nil), hidden...), *override)
	}
	hiddenFields := make([]map[string]any, 0, len(hidden))
	for _, field := range render.SortedHiddenFields(hidden...) {
		hiddenFields = append(hiddenFields, map[string]any{"name": field.Name, "value": field.Value})
	}

	formErrors := make([]any, 0, len(view.FormErrors))
	for _, message := range view.FormErrors {
		formErrors = append(formErrors, message)
	}

	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"classes":         r.classes,
		"method":          method,
		"action":          options.Action,
		"hidden_fields":   hiddenFields,
		"form_errors":     formErrors,
		"fields":          fields,
		"saving":          view.Saving,
		"submit_disabled": view.SubmitDisabled,
		"submit_label":    options.SubmitText(),
		"theme":           themeContext(options.Theme),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderField(props render.FieldProps) (map[string]any, error) {
	id := controlID(props.Name)
	help := props.Help
	if r.helpPolicy != nil && help != "" {
		help = r.helpPolicy.Sanitize(help)
	}

	choices := make([]map[string]any, 0, len(props.Choices))
	for _, choice := range props.Choices {
		choices = append(choices, map[string]any{
			"value":    render.ValueString(choice.Value),
			"label":    choice.Label,
			"selected": props.Selected(choice),
		})
	}

	name, inputType := widgetTemplateName(props.Widget, props.Type)
	control, err := r.templates.RenderTemplate(fmt.Sprintf(widgetTemplate, name), map[string]any{
		"id":          id,
		"name":        props.Name,
		"input_type":  inputType,
		"value":       props.ValueString(),
		"placeholder": props.Placeholder,
		"required":    props.Required,
		"disabled":    props.Disabled,
		"error":       props.Error,
		"choices":     choices,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render widget %q for field %q: %w", props.Widget, props.Name, err)
	}

	return map[string]any{
		"id":      id,
		"widget":  props.Widget,
		"label":   props.Label,
		"control": control,
		"help":    help,
		"error":   props.Error,
	}, nil
}
