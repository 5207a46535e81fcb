package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pluginform/internal/config"
	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/render"
	"github.com/goliatone/go-pluginform/pkg/renderers/tui"
	"github.com/goliatone/go-pluginform/pkg/renderers/vanilla"
)

func newShowCommand(a *app) *cobra.Command {
	var (
		format   string
		sanitize bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the plugin settings form",
		Long: `Fetch the plugin settings and print them either as the HTML form a browser
would render (--format html) or as a plain-text summary (--format text).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctrl, cfg, err := a.session(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer ctrl.Dispose()

			registry, err := renderers(sanitize || cfg.SanitizeHelp)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(rendererName(format))
			if err != nil {
				return fmt.Errorf("unsupported format %q (want html or text)", format)
			}
			out, err := renderer.Render(cmd.Context(), ctrl.View(), render.RenderOptions{
				Action: actionURL(cfg, ctrl),
				Method: http.MethodPut,
			})
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: html or text")
	cmd.Flags().BoolVar(&sanitize, "sanitize-help", false, "Sanitize field help HTML")
	return cmd
}

func newEditCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit the plugin settings interactively",
		Long: `Prompt for every editable field, show the pending changes and save them
after confirmation. Secret fields keep their value when left empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			ctrl, _, err := a.session(ctx, cmd)
			if err != nil {
				return err
			}
			defer ctrl.Dispose()

			out := cmd.OutOrStdout()
			driver := tui.NewSurveyDriver(out)
			editor := tui.NewEditor(tui.WithPromptDriver(driver), tui.WithOutput(out))
			if _, err := editor.Edit(ctx, ctrl); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(out, "Aborted, nothing saved.")
					return nil
				}
				return err
			}

			if !printPending(out, ctrl) {
				return nil
			}
			if !yes {
				ok, err := driver.Confirm(ctx, tui.ConfirmConfig{Message: "Save these changes?", Default: true})
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Discarded.")
					return nil
				}
			}
			return a.submit(ctx, out, ctrl)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Save without asking for confirmation")
	return cmd
}

func newSetCommand(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "set name=value...",
		Short: "Update plugin settings from arguments",
		Long: `Apply name=value assignments, print the pending changes and the JSON merge
patch, then save. Select fields accept the choice value. --dry-run stops
before saving.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			assignments, err := parseAssignments(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ctrl, _, err := a.session(ctx, cmd)
			if err != nil {
				return err
			}
			defer ctrl.Dispose()

			fields := ctrl.Snapshot().Fields
			for _, assignment := range assignments {
				value := coerceValue(fields, assignment.name, assignment.raw)
				if err := ctrl.HandleFieldChange(assignment.name, value); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if !printPending(out, ctrl) {
				return nil
			}
			patch, err := ctrl.Changes()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPatch: %s\n", patch)

			if dryRun {
				a.logger().Debug("dry run, not saving")
				return nil
			}
			return a.submit(ctx, out, ctrl)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes without saving")
	return cmd
}

type assignment struct {
	name string
	raw  string
}

func parseAssignments(args []string) ([]assignment, error) {
	out := make([]assignment, 0, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid assignment %q (want name=value)", arg)
		}
		out = append(out, assignment{name: name, raw: raw})
	}
	return out, nil
}

// coerceValue maps a select argument onto the matching choice so the saved
// value keeps the choice's type. Everything else stays a string.
func coerceValue(fields []model.FieldSpec, name, raw string) any {
	for _, field := range fields {
		if field.Name != name {
			continue
		}
		for _, choice := range field.Choices {
			if render.ValueString(choice.Value) == raw {
				return choice.Value
			}
		}
	}
	return raw
}

// printPending writes the pending diff and reports whether there is anything
// to save.
func printPending(out io.Writer, ctrl *form.Controller) bool {
	if !ctrl.CanSubmit() {
		fmt.Fprintln(out, "No changes.")
		return false
	}
	state := ctrl.Snapshot()
	fmt.Fprint(out, tui.Diff(state.Fields, state.Initial, state.Values))
	return true
}

func (a *app) submit(ctx context.Context, out io.Writer, ctrl *form.Controller) error {
	if err := ctrl.Submit(ctx); err != nil {
		if errors.Is(err, form.ErrSave) {
			fmt.Fprint(out, "\n"+tui.Summary(ctrl.View()))
		}
		a.printIndicators(out)
		return err
	}
	a.printIndicators(out)
	fmt.Fprintln(out, "Saved.")
	return nil
}

func renderers(sanitizeHelp bool) (*render.Registry, error) {
	var options []vanilla.Option
	if sanitizeHelp {
		options = append(options, vanilla.WithSanitizedHelp())
	}
	html, err := vanilla.New(options...)
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(tui.TextRenderer{})
	return registry, nil
}

func rendererName(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "html":
		return "vanilla"
	default:
		return strings.ToLower(strings.TrimSpace(format))
	}
}

func actionURL(cfg config.Config, ctrl *form.Controller) string {
	return strings.TrimRight(cfg.Server, "/") + ctrl.Endpoint().Path()
}
