// Package transport talks to the plugin configuration endpoint. The Transport
// interface is what the form controller depends on; HTTPClient is the network
// implementation and Memory an in-process one for demos and tests.
package transport

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/goliatone/go-pluginform/pkg/model"
)

// Endpoint identifies the plugin whose configuration is edited.
type Endpoint struct {
	Organization string
	Project      string
	Plugin       string
}

// Validate requires all three identifiers.
func (e Endpoint) Validate() error {
	var missing []string
	if strings.TrimSpace(e.Organization) == "" {
		missing = append(missing, "organization")
	}
	if strings.TrimSpace(e.Project) == "" {
		missing = append(missing, "project")
	}
	if strings.TrimSpace(e.Plugin) == "" {
		missing = append(missing, "plugin")
	}
	if len(missing) > 0 {
		return errors.New("transport: endpoint is missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Path returns the API path of the plugin configuration resource.
func (e Endpoint) Path() string {
	return "/projects/" + url.PathEscape(strings.TrimSpace(e.Organization)) +
		"/" + url.PathEscape(strings.TrimSpace(e.Project)) +
		"/plugins/" + url.PathEscape(strings.TrimSpace(e.Plugin)) + "/"
}

func (e Endpoint) String() string {
	return e.Path()
}

// Transport fetches and saves plugin configuration. Both calls return the
// config list as the server reports it after the operation.
type Transport interface {
	Fetch(ctx context.Context, endpoint Endpoint) ([]model.ConfigField, error)
	Save(ctx context.Context, endpoint Endpoint, values model.Values) ([]model.ConfigField, error)
}

// ConfigResponse is the body returned by fetch and successful save calls.
type ConfigResponse struct {
	Config []model.ConfigField `json:"config"`
}
