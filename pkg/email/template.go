package email

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
	"strings"
)

// Renderer renders <name>.html inside base.html from a template directory.
type Renderer struct {
	dir string
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render executes base.html with the body template named name.
func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	name = strings.ToLower(strings.TrimSuffix(name, ".html"))
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("invalid email template name %q", name)
	}

	basePath := filepath.Join(r.dir, "base.html")
	bodyPath := filepath.Join(r.dir, name+".html")

	tmpl, err := template.ParseFiles(basePath, bodyPath)
	if err != nil {
		return "", fmt.Errorf("parse email templates: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		return "", fmt.Errorf("execute email template: %w", err)
	}
	return buf.String(), nil
}
