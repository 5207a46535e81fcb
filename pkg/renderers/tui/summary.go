package tui

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/render"
	"github.com/goliatone/go-pluginform/pkg/widgets"
)

const (
	secretMask = "********"
	notSet     = "(not set)"
)

// TextRenderer renders a form view as a plain-text summary.
type TextRenderer struct{}

var _ render.Renderer = TextRenderer{}

func (TextRenderer) Name() string {
	return "text"
}

func (TextRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (TextRenderer) Render(ctx context.Context, view render.View, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte(summarize(view, options.SubmitText())), nil
}

// Summary prints one line per rendered field followed by the submit state.
// Secret values are masked.
func Summary(view render.View) string {
	return summarize(view, render.DefaultSubmitLabel)
}

func summarize(view render.View, submitLabel string) string {
	var b strings.Builder
	for _, message := range view.FormErrors {
		b.WriteString("! " + message + "\n")
	}
	for _, props := range view.Props() {
		if !props.HasWidget() {
			continue
		}
		b.WriteString(fieldLine(props, false))
		b.WriteByte('\n')
		if props.Error != "" {
			b.WriteString("  ! " + props.Error + "\n")
		}
	}

	b.WriteString("[" + submitLabel + "]")
	switch {
	case view.Saving:
		b.WriteString(" (saving)")
	case view.SubmitDisabled:
		b.WriteString(" (disabled)")
	}
	b.WriteByte('\n')
	return b.String()
}

// Diff renders the field lines for before and after and returns a line diff
// with "- ", "+ " and "  " prefixes. It returns "" when nothing changed.
func Diff(fields []model.FieldSpec, before, after model.Values) string {
	var oldText, newText strings.Builder
	changed := false
	registry := widgets.Default()
	for _, field := range fields {
		oldProps := render.BuildPropsWith(registry, field, before, nil)
		if !oldProps.HasWidget() {
			continue
		}
		newProps := render.BuildPropsWith(registry, field, after, nil)
		differs := !model.ValueEqual(before[field.Name], after[field.Name])
		changed = changed || differs

		oldText.WriteString(fieldLine(oldProps, false) + "\n")
		newText.WriteString(fieldLine(newProps, differs) + "\n")
	}
	if !changed {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(oldText.String(), newText.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, diff := range diffs {
		prefix := "  "
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		}
		for _, line := range strings.SplitAfter(diff.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix + line)
		}
	}
	return out.String()
}

// fieldLine formats "Label: value". A changed secret is flagged so the diff
// shows it even though both sides are masked.
func fieldLine(props render.FieldProps, changed bool) string {
	line := props.Label + ": " + displayValue(props)
	if props.Widget == widgets.WidgetPassword && changed && props.ValueString() != "" {
		line += " (changed)"
	}
	if props.Disabled {
		line += " (read-only)"
	}
	return line
}

func displayValue(props render.FieldProps) string {
	value := strings.Join(strings.Fields(props.ValueString()), " ")
	if value == "" {
		return notSet
	}
	switch props.Widget {
	case widgets.WidgetPassword:
		return secretMask
	case widgets.WidgetSelect:
		for _, choice := range props.Choices {
			if props.Selected(choice) {
				return choice.Label
			}
		}
	}
	return value
}

var helpPolicy = bluemonday.StrictPolicy()

// plainHelp strips markup from server help HTML for terminal display.
func plainHelp(help string) string {
	if strings.TrimSpace(help) == "" {
		return ""
	}
	text := html.UnescapeString(helpPolicy.Sanitize(help))
	return strings.Join(strings.Fields(text), " ")
}
