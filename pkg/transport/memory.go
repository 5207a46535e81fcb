package transport

import (
	"context"
	"sync"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Memory is an in-process Transport holding one plugin config per endpoint.
// Save copies submitted values into the stored fields; values for unknown
// names are ignored. A Validate hook can reject a save with field errors.
type Memory struct {
	mu       sync.Mutex
	configs  map[string][]model.ConfigField
	validate func(model.Values) map[string][]string
}

var _ Transport = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{configs: make(map[string][]model.ConfigField)}
}

// Put stores the config for endpoint.
func (m *Memory) Put(endpoint Endpoint, fields []model.ConfigField) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[endpoint.Path()] = cloneConfig(fields)
}

// SetValidator installs a hook consulted on every save. A non-empty result
// fails the save with a 400 StatusError.
func (m *Memory) SetValidator(fn func(model.Values) map[string][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validate = fn
}

func (m *Memory) Fetch(ctx context.Context, endpoint Endpoint) ([]model.ConfigField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.configs[endpoint.Path()]
	if !ok {
		return nil, &StatusError{Code: 404, Status: "404 Not Found"}
	}
	return cloneConfig(fields), nil
}

func (m *Memory) Save(ctx context.Context, endpoint Endpoint, values model.Values) ([]model.ConfigField, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fields, ok := m.configs[endpoint.Path()]
	if !ok {
		return nil, &StatusError{Code: 404, Status: "404 Not Found"}
	}
	if m.validate != nil {
		if errs := m.validate(values.Clone()); len(errs) > 0 {
			return nil, &StatusError{Code: 400, Status: "400 Bad Request", FieldErrors: errs}
		}
	}
	values = values.Clone()
	updated := cloneConfig(fields)
	for i := range updated {
		if value, ok := values[updated[i].Name]; ok {
			updated[i].Value = value
		}
	}
	m.configs[endpoint.Path()] = updated
	return cloneConfig(updated), nil
}

func cloneConfig(fields []model.ConfigField) []model.ConfigField {
	if fields == nil {
		return nil
	}
	out := make([]model.ConfigField, len(fields))
	specs := model.Specs(fields)
	for i, field := range fields {
		out[i] = model.ConfigField{FieldSpec: specs[i]}
		cloned := model.Values{"value": field.Value, "default": field.DefaultValue}.Clone()
		out[i].Value = cloned["value"]
		out[i].DefaultValue = cloned["default"]
	}
	return out
}
