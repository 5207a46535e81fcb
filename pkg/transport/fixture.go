package transport

import (
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// DecodeConfig reads a `{config: [...]}` document in YAML or JSON, the same
// shape the plugin endpoint returns. Fields are decoded through their JSON
// tags so fixture keys match the wire format.
func DecodeConfig(data []byte) ([]model.ConfigField, error) {
	var doc struct {
		Config []any `yaml:"config"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("transport: decode config document: %w", err)
	}
	if doc.Config == nil {
		return nil, errors.New("transport: config document has no config list")
	}
	raw, err := sonic.Marshal(doc.Config)
	if err != nil {
		return nil, fmt.Errorf("transport: re-encode config: %w", err)
	}
	var fields []model.ConfigField
	if err := sonic.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("transport: decode config fields: %w", err)
	}
	return fields, nil
}
