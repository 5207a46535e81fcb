package testsupport

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"testing"

	"github.com/goliatone/go-pluginform/pkg/model"
	"github.com/goliatone/go-pluginform/pkg/transport"
)

//go:embed testdata/plugin_config.yaml
var sampleConfig []byte

// SampleConfig returns a fresh copy of the bundled plugin configuration:
// one field per widget kind plus a readonly field.
func SampleConfig(t testing.TB) []model.ConfigField {
	t.Helper()

	fields, err := DecodeConfig(sampleConfig)
	if err != nil {
		t.Fatalf("decode sample config: %v", err)
	}
	return fields
}

// SampleConfigYAML returns the raw bundled fixture.
func SampleConfigYAML() []byte {
	return bytes.Clone(sampleConfig)
}

// LoadConfig reads a YAML or JSON fixture from path.
func LoadConfig(t testing.TB, path string) []model.ConfigField {
	t.Helper()

	fields, err := LoadConfigFromPath(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return fields
}

// LoadConfigFromPath reads a fixture without requiring testing.TB so setup
// code outside tests can reuse it.
func LoadConfigFromPath(path string) ([]model.ConfigField, error) {
	if path == "" {
		return nil, errors.New("testsupport: config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read config: %w", err)
	}
	return DecodeConfig(data)
}

// ReadConfig decodes a fixture from r.
func ReadConfig(r io.Reader) ([]model.ConfigField, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("testsupport: read config: %w", err)
	}
	return DecodeConfig(data)
}

// DecodeConfig accepts `{config: [...]}` documents in YAML or JSON.
func DecodeConfig(data []byte) ([]model.ConfigField, error) {
	fields, err := transport.DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("testsupport: %w", err)
	}
	return fields, nil
}
