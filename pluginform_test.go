package pluginform_test

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-pluginform"
	"github.com/goliatone/go-pluginform/pkg/form"
	"github.com/goliatone/go-pluginform/pkg/testsupport"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

var endpoint = pluginform.Endpoint{Organization: "acme", Project: "web", Plugin: "tracker"}

func TestOpenAndRenderHTML(t *testing.T) {
	mem := transport.NewMemory()
	mem.Put(endpoint, testsupport.SampleConfig(t))

	ctrl, err := pluginform.Open(context.Background(), mem, endpoint)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ctrl.Dispose()

	out, err := pluginform.RenderHTML(context.Background(), ctrl.View(), pluginform.RenderOptions{
		Action: endpoint.Path(),
		Method: "PUT",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	for _, want := range []string{
		`action="/projects/acme/web/plugins/tracker/"`,
		`name="project_key"`,
		`value="OPS"`,
		`<button type="submit" disabled>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected %q in output:\n%s", want, html)
		}
	}
}

func TestOpenReportsLoadFailure(t *testing.T) {
	ctrl, err := pluginform.Open(context.Background(), transport.NewMemory(), endpoint)
	if !errors.Is(err, form.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
	if ctrl != nil {
		t.Fatalf("expected nil controller on failure")
	}
}

func TestOpenRequiresEndpoint(t *testing.T) {
	if _, err := pluginform.Open(context.Background(), transport.NewMemory(), pluginform.Endpoint{}); err == nil {
		t.Fatalf("expected endpoint validation error")
	}
}

func TestEmbeddedTemplates(t *testing.T) {
	if _, err := fs.ReadFile(pluginform.EmbeddedTemplates(), "templates/form.tmpl"); err != nil {
		t.Fatalf("expected form template: %v", err)
	}
}
