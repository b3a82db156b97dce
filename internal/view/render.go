package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/St1cky1/ticket-generator/internal/entity"
)

//go:embed templates/page.html
var templatesFS embed.FS

var pageTemplate = template.Must(
	template.New("page.html").
		Funcs(template.FuncMap{
			// data: URI превью собираем сами, поэтому помечаем его безопасным
			"safeURL": func(s string) template.URL { return template.URL(s) },
		}).
		ParseFS(templatesFS, "templates/page.html"),
)

type pageData struct {
	Snapshot Snapshot
	Fields   []entity.Field
}

// Render пишет HTML страницы по снимку состояния
func Render(w io.Writer, s Snapshot, fields []entity.Field) error {
	return pageTemplate.Execute(w, pageData{Snapshot: s, Fields: fields})
}
