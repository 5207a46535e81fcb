// Package model defines the plugin configuration schema exchanged with the
// server. A FieldSpec describes one input (name, type, presentation hints),
// ConfigField pairs it with the server-side value and default, and Values is
// the flat name → value map the form edits and submits. Field values are kept
// in their decoded JSON shape (string, float64, bool, nil, []any,
// map[string]any) so Equal and Clone can stay explicit about what they
// handle.
package model
