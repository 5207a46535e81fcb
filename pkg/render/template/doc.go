// Package template defines the template engine seam used by HTML renderers.
// Engines live in subpackages so renderers depend only on the interface.
package template
