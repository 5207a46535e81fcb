package gotemplate_test

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pluginform/pkg/render/template/gotemplate"
)

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	files := fstest.MapFS{
		"hello.tmpl":  {Data: []byte("Hello {{ name }}!")},
		"global.tmpl": {Data: []byte("env={{ settings.env }}")},
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(files)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without template source")
	}
}

func TestRenderTemplateWritesOutput(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("render = %q", got)
	}
	if buf.String() != got {
		t.Fatalf("writer = %q, want %q", buf.String(), got)
	}
}

func TestRenderEscapesByDefault(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString(`{{ v }}|{{ v|safe }}`, map[string]any{"v": "<b>x</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "&lt;b&gt;x&lt;/b&gt;|<b>x</b>" {
		t.Fatalf("render = %q", got)
	}
}

func TestGlobalContext(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))
	got, err := engine.RenderTemplate("global.tmpl", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("render = %q", got)
	}
}

func TestStructDataIsConverted(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name string `json:"name"`
	}{Name: "Grace"}
	got, err := engine.RenderTemplate("hello", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Grace!" {
		t.Fatalf("render = %q", got)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("pluginform_upper", func(input any, _ any) (any, error) {
		s, _ := input.(string)
		return strings.ToUpper(s), nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	got, err := engine.RenderString(`{{ name|pluginform_upper }}`, map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA" {
		t.Fatalf("render = %q", got)
	}
	if err := engine.RegisterFilter("pluginform_upper", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}
}

func TestMissingTemplate(t *testing.T) {
	engine := newEngine(t)
	if _, err := engine.RenderTemplate("missing", nil); err == nil {
		t.Fatalf("expected error for missing template")
	}
}

func TestDefaultTrimFilter(t *testing.T) {
	engine := newEngine(t)
	got, err := engine.RenderString(`[{{ v|trim }}]`, map[string]any{"v": "  ops  "})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "[ops]" {
		t.Fatalf("render = %q", got)
	}
}
