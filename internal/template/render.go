package template

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed pages/*.html
var pages embed.FS

var parsed = template.Must(template.ParseFS(pages, "pages/*.html"))

// Render executes an embedded page template with the given data and
// returns the result as a string.
func Render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := parsed.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
