package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer draws a page onto w
type Renderer interface {
	Render(w io.Writer, page Page) error
	ContentType() string
}

// HTMLRenderer renders the full catalog page as HTML
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the embedded page template
func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

// Render executes the page template
func (r *HTMLRenderer) Render(w io.Writer, page Page) error {
	if err := r.tmpl.ExecuteTemplate(w, "page.html", page); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	return nil
}

// ContentType returns the HTTP content type of the output
func (r *HTMLRenderer) ContentType() string {
	return "text/html; charset=utf-8"
}
