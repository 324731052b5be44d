package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates
var templates embed.FS

// HTML renders the search page from the embedded template.
type HTML struct {
	page *template.Template
}

func NewHTML() (*HTML, error) {
	t, err := template.New("search.html").ParseFS(templates, "templates/search.html")
	if err != nil {
		return nil, err
	}

	return &HTML{
		page: t,
	}, nil
}

// Render executes the template into a buffer first so that a failed render never leaves a
// partial page on the writer.
func (h *HTML) Render(w io.Writer, page Page) error {
	var b bytes.Buffer
	if err := h.page.Execute(&b, page); err != nil {
		return err
	}

	_, err := w.Write(b.Bytes())

	return err
}
