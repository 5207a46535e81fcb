package widgets

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-pluginform/pkg/model"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		name   string
		field  model.FieldSpec
		expect string
		ok     bool
	}{
		{name: "secret", field: model.FieldSpec{Type: model.FieldTypeSecret}, expect: WidgetPassword, ok: true},
		{name: "text", field: model.FieldSpec{Type: model.FieldTypeText}, expect: WidgetText, ok: true},
		{name: "url", field: model.FieldSpec{Type: model.FieldTypeURL}, expect: WidgetText, ok: true},
		{name: "textarea", field: model.FieldSpec{Type: model.FieldTypeTextarea}, expect: WidgetTextarea, ok: true},
		{name: "select", field: model.FieldSpec{Type: model.FieldTypeSelect}, expect: WidgetSelect, ok: true},
		{
			name:   "select autocomplete",
			field:  model.FieldSpec{Type: model.FieldTypeSelect, HasAutocomplete: true},
			expect: WidgetSelectAutocomplete,
			ok:     true,
		},
		{name: "unknown", field: model.FieldSpec{Type: "color"}, expect: "", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := reg.Resolve(tc.field)
			if got != tc.expect || ok != tc.ok {
				t.Fatalf("Resolve() = (%q, %v), want (%q, %v)", got, ok, tc.expect, tc.ok)
			}
		})
	}
}

func TestRegister_PriorityOverridesBuiltin(t *testing.T) {
	reg := NewRegistry()
	reg.Register("markdown", 100, func(field model.FieldSpec) bool {
		return field.Type == model.FieldTypeTextarea && field.Name == "notes"
	})
	reg.Register("color", 10, func(field model.FieldSpec) bool {
		return field.Type == "color"
	})

	if got, _ := reg.Resolve(model.FieldSpec{Name: "notes", Type: model.FieldTypeTextarea}); got != "markdown" {
		t.Fatalf("expected custom widget to win, got %q", got)
	}
	if got, _ := reg.Resolve(model.FieldSpec{Name: "other", Type: model.FieldTypeTextarea}); got != WidgetTextarea {
		t.Fatalf("expected builtin for non-matching field, got %q", got)
	}
	if got, _ := reg.Resolve(model.FieldSpec{Type: "color"}); got != "color" {
		t.Fatalf("expected custom type to resolve, got %q", got)
	}
}

func TestRegister_IgnoresInvalid(t *testing.T) {
	reg := &Registry{}
	reg.Register("", 1, func(model.FieldSpec) bool { return true })
	reg.Register("nil", 1, nil)

	if _, ok := reg.Resolve(model.FieldSpec{Type: model.FieldTypeText}); ok {
		t.Fatalf("expected empty registry to resolve nothing")
	}

	var nilReg *Registry
	if _, ok := nilReg.Resolve(model.FieldSpec{}); ok {
		t.Fatalf("nil registry should not resolve")
	}
}

func TestNames(t *testing.T) {
	want := []string{WidgetPassword, WidgetSelect, WidgetSelectAutocomplete, WidgetText, WidgetTextarea}
	if diff := cmp.Diff(want, Default().Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
}
