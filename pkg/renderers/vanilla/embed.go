package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl templates/widgets/*.tmpl
var embeddedTemplates embed.FS

const (
	formTemplate   = "templates/form.tmpl"
	widgetTemplate = "templates/widgets/%s.tmpl"
)

// TemplatesFS exposes the embedded template bundle so hosts can copy and
// override individual templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
