// Package pluginform is the entry point for embedding the plugin settings
// form: open a controller against a transport, then render its view.
package pluginform

import (
	"context"

	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/render"
	"github.com/goliatone/go-pluginform/pkg/renderers/vanilla"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

// Endpoint identifies the plugin being configured.
type Endpoint = transport.Endpoint

// RenderOptions carries the form action, method and extra hidden inputs.
type RenderOptions = render.RenderOptions

// View is the render-time snapshot of a controller.
type View = render.View

// Open constructs a controller and loads the schema. A load failure is
// returned after the controller has been disposed.
func Open(ctx context.Context, t transport.Transport, endpoint Endpoint, options ...form.Option) (*form.Controller, error) {
	ctrl, err := form.New(t, endpoint, options...)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Initialize(ctx); err != nil {
		_ = ctrl.Dispose()
		return nil, err
	}
	return ctrl, nil
}

// RenderHTML renders view with the vanilla HTML renderer.
func RenderHTML(ctx context.Context, view View, options RenderOptions, rendererOptions ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, view, options)
}
