// Package tui edits and prints plugin forms in a terminal. The Editor walks
// every field of a form, prompts through a PromptDriver and feeds answers
// back into the form one field at a time.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/render"
	"github.com/goliatone/go-pluginform/pkg/widgets"
)

const noneOption = "(none)"

// Target is the form an Editor drives. *form.Controller satisfies it.
type Target interface {
	View() render.View
	HandleFieldChange(name string, value any) error
}

// Editor prompts for each field of a Target.
type Editor struct {
	driver PromptDriver
	out    io.Writer
	theme  Theme
}

// NewEditor constructs an editor. Without WithPromptDriver the survey driver
// is used.
func NewEditor(options ...Option) *Editor {
	e := &Editor{
		out:   defaultOutput(),
		theme: Theme{ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	if e.driver == nil {
		e.driver = NewSurveyDriver(e.out)
	}
	return e
}

// Edit prompts for every editable field in schema order and applies changed
// answers to target. It returns the names of the fields that changed.
func (e *Editor) Edit(ctx context.Context, target Target) ([]string, error) {
	if target == nil {
		return nil, errors.New("tui: edit target is nil")
	}
	view := target.View()
	if len(view.Fields) == 0 {
		return nil, errors.New("tui: form has no fields")
	}
	for _, message := range view.FormErrors {
		if err := e.driver.Info(ctx, e.theme.ErrorPrefix+message); err != nil {
			return nil, err
		}
	}

	var changed []string
	for _, props := range view.Props() {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		if !props.HasWidget() {
			continue
		}
		if props.Disabled {
			if err := e.driver.Info(ctx, e.theme.InfoPrefix+fieldLine(props, false)); err != nil {
				return changed, err
			}
			continue
		}
		if props.Error != "" {
			if err := e.driver.Info(ctx, e.theme.ErrorPrefix+props.Label+": "+props.Error); err != nil {
				return changed, err
			}
		}

		value, ok, err := e.prompt(ctx, props)
		if err != nil {
			return changed, fmt.Errorf("tui: field %q: %w", props.Name, err)
		}
		if !ok || model.ValueEqual(props.Value, value) {
			continue
		}
		if err := target.HandleFieldChange(props.Name, value); err != nil {
			return changed, err
		}
		changed = append(changed, props.Name)
	}
	return changed, nil
}

// prompt asks for one field. ok is false when the answer keeps the current
// value.
func (e *Editor) prompt(ctx context.Context, props render.FieldProps) (any, bool, error) {
	help := plainHelp(props.Help)
	current := props.ValueString()

	switch props.Widget {
	case widgets.WidgetPassword:
		response, err := e.driver.Password(ctx, InputConfig{
			Message: props.Label,
			Help:    joinHelp(help, "Leave empty to keep the current value."),
		})
		if err != nil || response == "" {
			return nil, false, err
		}
		return response, true, nil

	case widgets.WidgetTextarea:
		response, err := e.driver.TextArea(ctx, TextAreaConfig{
			Message: props.Label,
			Default: current,
			Help:    help,
		})
		if err != nil || response == current {
			return nil, false, err
		}
		return response, true, nil

	case widgets.WidgetSelect:
		return e.promptSelect(ctx, props, help)

	default:
		cfg := InputConfig{
			Message:     props.Label,
			Default:     current,
			Help:        help,
			Placeholder: props.Placeholder,
		}
		if props.Required {
			cfg.Validator = requireValue
		}
		response, err := e.driver.Input(ctx, cfg)
		if err != nil || response == current {
			return nil, false, err
		}
		return response, true, nil
	}
}

func (e *Editor) promptSelect(ctx context.Context, props render.FieldProps, help string) (any, bool, error) {
	if len(props.Choices) == 0 {
		return nil, false, ErrNoChoices
	}
	var options []string
	offset := 0
	if !props.Required {
		options = append(options, noneOption)
		offset = 1
	}
	defaultIndex := 0
	for i, choice := range props.Choices {
		options = append(options, choice.Label)
		if props.Selected(choice) {
			defaultIndex = i + offset
		}
	}

	idx, err := e.driver.Select(ctx, SelectConfig{
		Message:      props.Label,
		Options:      options,
		DefaultIndex: defaultIndex,
		Help:         help,
	})
	if err != nil {
		return nil, false, err
	}
	switch {
	case idx < 0 || idx >= len(options):
		return nil, false, fmt.Errorf("tui: select index %d out of range", idx)
	case idx < offset:
		if props.ValueString() == "" {
			return nil, false, nil
		}
		return "", true, nil
	default:
		return props.Choices[idx-offset].Value, true, nil
	}
}

func requireValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("a value is required")
	}
	return nil
}

func joinHelp(parts ...string) string {
	var kept []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, " ")
}
