package form

import (
	"github.com/goliatone/go-pluginform/pkg/model"
)

// Lifecycle is the coarse form status driving rendering and submit gating.
type Lifecycle string

const (
	LifecycleReady   Lifecycle = "ready"
	LifecycleLoading Lifecycle = "loading"
	LifecycleSaving  Lifecycle = "saving"
	LifecycleError   Lifecycle = "error"
)

// State is the complete form state. Fields is nil until the schema has been
// loaded.
type State struct {
	Fields     []model.FieldSpec
	Values     model.Values
	Initial    model.Values
	Errors     map[string]string
	FormErrors []string
	Lifecycle  Lifecycle
	// LoadErr is set when the schema fetch failed. It is terminal for the
	// controller that produced it.
	LoadErr error
}

// Loaded reports whether a schema is present.
func (s State) Loaded() bool {
	return s.Fields != nil
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	if s.Fields != nil {
		out.Fields = append([]model.FieldSpec(nil), s.Fields...)
	}
	if s.Values != nil {
		out.Values = s.Values.Clone()
	}
	if s.Initial != nil {
		out.Initial = s.Initial.Clone()
	}
	out.Errors = cloneErrors(s.Errors)
	if s.FormErrors != nil {
		out.FormErrors = append([]string(nil), s.FormErrors...)
	}
	return out
}

// IsDirty reports whether the values differ from the last loaded or saved
// snapshot.
func IsDirty(s State) bool {
	return !model.Equal(s.Values, s.Initial)
}

// CanSubmit reports whether a submit should be offered: never while saving,
// and only when there is something to save.
func CanSubmit(s State) bool {
	return s.Lifecycle != LifecycleSaving && IsDirty(s)
}

// Update is one partial change to a State.
type Update func(*State)

// ApplyUpdate returns a new state with updates applied in order. The current
// state is not modified and shares no maps or slices with the result.
func ApplyUpdate(current State, updates ...Update) State {
	next := current.Clone()
	for _, update := range updates {
		if update != nil {
			update(&next)
		}
	}
	if next.Errors == nil {
		next.Errors = make(map[string]string)
	}
	pruneUnknownValues(&next)
	return next
}

// WithLifecycle sets the lifecycle.
func WithLifecycle(lifecycle Lifecycle) Update {
	return func(s *State) {
		s.Lifecycle = lifecycle
	}
}

// WithConfig replaces the schema and both value maps from a server config
// payload. Initial receives its own deep copy.
func WithConfig(fields []model.ConfigField) Update {
	return func(s *State) {
		specs := model.Specs(fields)
		if specs == nil {
			specs = []model.FieldSpec{}
		}
		s.Fields = specs
		s.Values = model.ValuesFromConfig(fields)
		s.Initial = s.Values.Clone()
	}
}

// WithValue writes one field value in JSON shape and clears that field's
// error. Names that are not part of the current values are ignored.
func WithValue(name string, value any) Update {
	return func(s *State) {
		if !s.Values.Has(name) {
			return
		}
		shaped, err := model.Normalize(value)
		if err != nil {
			shaped = value
		}
		s.Values[name] = shaped
		delete(s.Errors, name)
	}
}

// WithErrors replaces both error collections.
func WithErrors(fields map[string]string, formErrors []string) Update {
	return func(s *State) {
		s.Errors = cloneErrors(fields)
		s.FormErrors = append([]string(nil), formErrors...)
		if len(s.FormErrors) == 0 {
			s.FormErrors = nil
		}
	}
}

// WithoutErrors clears all errors.
func WithoutErrors() Update {
	return WithErrors(nil, nil)
}

// WithLoadError records a failed schema fetch and drops any partial schema.
func WithLoadError(err error) Update {
	return func(s *State) {
		s.LoadErr = err
		s.Fields = nil
		s.Values = nil
		s.Initial = nil
	}
}

func pruneUnknownValues(s *State) {
	if s.Values == nil {
		return
	}
	known := make(map[string]struct{}, len(s.Fields))
	for _, field := range s.Fields {
		known[field.Name] = struct{}{}
	}
	for name := range s.Values {
		if _, ok := known[name]; !ok {
			delete(s.Values, name)
		}
	}
}

func cloneErrors(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
